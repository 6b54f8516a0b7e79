package emotion

import "strings"

// Label is one emotion class reported by the detector.
type Label string

const (
	Angry    Label = "angry"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
)

// Labels is the canonical enumeration order. Score ties resolve to the
// label that appears first here.
var Labels = []Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// ParseLabel accepts a detector label in any case.
func ParseLabel(raw string) (Label, bool) {
	for _, l := range Labels {
		if strings.EqualFold(strings.TrimSpace(raw), string(l)) {
			return l, true
		}
	}
	return "", false
}

// Bucket is a coarse sentiment class.
type Bucket string

const (
	BucketGood    Bucket = "Good"
	BucketNeutral Bucket = "Neutral"
	BucketBad     Bucket = "Bad"
)

// Buckets is the report order.
var Buckets = []Bucket{BucketGood, BucketNeutral, BucketBad}

// BucketOf maps a label onto its sentiment bucket. Surprise counts as Good.
func BucketOf(l Label) Bucket {
	switch l {
	case Happy, Surprise:
		return BucketGood
	case Neutral:
		return BucketNeutral
	default:
		return BucketBad
	}
}
