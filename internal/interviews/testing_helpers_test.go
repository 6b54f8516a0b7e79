package interviews

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"recruit-backend/internal/candidates"
	"recruit-backend/internal/emotion"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/queue"
	"recruit-backend/internal/shared/storage/object/local"
	"recruit-backend/internal/technology"
)

type reply struct {
	out string
	err error
}

type scriptedAnalyzer struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

func (s *scriptedAnalyzer) Analyze(ctx context.Context, prompt string, shape llm.OutputShape) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.prompts)
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.prompts = append(s.prompts, prompt)
	return s.replies[i].out, s.replies[i].err
}

// fixedDetector reports the same faces for every frame.
type fixedDetector struct {
	faces []emotion.DetectionResult
}

func (d fixedDetector) Detect(ctx context.Context, frame *emotion.Frame) []emotion.DetectionResult {
	return d.faces
}

type recordingQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, msg)
	return q.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 150, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

const testCandidateID = "11111111-1111-1111-1111-111111111111"

type fixture struct {
	svc      *Service
	repo     *MemoryRepo
	analyzer *scriptedAnalyzer
}

func newFixture(t *testing.T, a *scriptedAnalyzer, faces ...emotion.DetectionResult) fixture {
	t.Helper()
	cands := candidates.NewMemoryRepo()
	if err := cands.Create(context.Background(), candidates.Candidate{
		ID:         testCandidateID,
		Name:       "Asha Patel",
		Email:      "asha@example.com",
		Technology: "python,aws",
		Experience: "3 years",
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	repo := NewMemoryRepo()
	return fixture{
		svc: &Service{
			Store:      local.New(t.TempDir()),
			Repo:       repo,
			Candidates: cands,
			Aggregator: emotion.NewAggregator(fixedDetector{faces: faces}),
			Extractor:  extraction.NewPipeline(a, technology.Default()),
			Analyzer:   a,
		},
		repo:     repo,
		analyzer: a,
	}
}
