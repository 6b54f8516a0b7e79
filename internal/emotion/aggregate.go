package emotion

import (
	"context"
	"fmt"
	"math"

	"recruit-backend/internal/shared/telemetry"
)

// NoFacesLine is the only report line when no face was found.
const NoFacesLine = "No faces detected in the interview photos."

var bucketSentences = map[Bucket]string{
	BucketGood:    "Candidate showed strong focus and interest.",
	BucketNeutral: "Candidate expressions were calm and composed.",
	BucketBad:     "Candidate expressions indicated distraction or stress.",
}

// Photo is one image of the subject.
type Photo struct {
	Name string
	Data []byte
}

// BucketCounts holds one number per sentiment bucket.
type BucketCounts struct {
	Good    int `json:"good"`
	Neutral int `json:"neutral"`
	Bad     int `json:"bad"`
}

func (b BucketCounts) Get(bucket Bucket) int {
	switch bucket {
	case BucketGood:
		return b.Good
	case BucketNeutral:
		return b.Neutral
	default:
		return b.Bad
	}
}

func (b *BucketCounts) add(bucket Bucket, n int) {
	switch bucket {
	case BucketGood:
		b.Good += n
	case BucketNeutral:
		b.Neutral += n
	default:
		b.Bad += n
	}
}

// Sum is Good+Neutral+Bad.
func (b BucketCounts) Sum() int { return b.Good + b.Neutral + b.Bad }

// Summary is the reduced emotion signal for one subject.
type Summary struct {
	TotalPhotos   int           `json:"total_photos"`
	TotalFaces    int           `json:"total_faces"`
	EmotionCounts map[Label]int `json:"emotion_counts"`
	Buckets       BucketCounts  `json:"bucket_counts"`
	Percentages   BucketCounts  `json:"percentages"`
	ReportLines   []string      `json:"report_lines"`
}

// FrameDetector is satisfied by *Chain.
type FrameDetector interface {
	Detect(ctx context.Context, frame *Frame) []DetectionResult
}

// Aggregator runs every photo through the detector chain and buckets the
// dominant emotion of each face.
type Aggregator struct {
	detector FrameDetector
}

func NewAggregator(detector FrameDetector) *Aggregator {
	return &Aggregator{detector: detector}
}

// Aggregate never fails. Photos that cannot be decoded are skipped and not
// counted in TotalPhotos.
func (a *Aggregator) Aggregate(ctx context.Context, photos []Photo) Summary {
	var (
		labels []Label
		loaded int
	)
	for _, p := range photos {
		img, err := DecodeImage(p.Data)
		if err != nil {
			telemetry.Warn("emotion.photo_skipped", map[string]any{
				"photo": p.Name,
				"error": err.Error(),
			})
			continue
		}
		loaded++
		if a.detector == nil {
			continue
		}
		for _, face := range a.detector.Detect(ctx, Preprocess(img)) {
			if l, ok := face.Dominant(); ok {
				labels = append(labels, l)
			}
		}
	}
	summary := Summarize(labels, loaded)
	telemetry.Info("emotion.summary", map[string]any{
		"photos":  summary.TotalPhotos,
		"faces":   summary.TotalFaces,
		"good":    summary.Buckets.Good,
		"neutral": summary.Buckets.Neutral,
		"bad":     summary.Buckets.Bad,
	})
	return summary
}

// Summarize reduces face labels into bucket counts, percentages and report lines.
func Summarize(labels []Label, totalPhotos int) Summary {
	s := Summary{
		TotalPhotos:   totalPhotos,
		TotalFaces:    len(labels),
		EmotionCounts: make(map[Label]int, len(Labels)),
	}
	for _, l := range Labels {
		s.EmotionCounts[l] = 0
	}
	if len(labels) == 0 {
		s.TotalFaces = 0
		s.ReportLines = []string{NoFacesLine}
		return s
	}
	for _, l := range labels {
		s.EmotionCounts[l]++
		s.Buckets.add(BucketOf(l), 1)
	}
	for _, b := range Buckets {
		n := s.Buckets.Get(b)
		pct := int(math.Round(float64(n) / float64(s.TotalFaces) * 100))
		s.Percentages.add(b, pct)
		if n > 0 {
			s.ReportLines = append(s.ReportLines, fmt.Sprintf("%s (%d%%): %s", b, pct, bucketSentences[b]))
		}
	}
	return s
}
