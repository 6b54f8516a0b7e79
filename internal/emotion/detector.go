package emotion

import (
	"context"
	"fmt"
	"image"

	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

// Box is a face rectangle in frame pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// DetectionResult is one face found in an image.
type DetectionResult struct {
	Box        Box               `json:"box"`
	Emotion    Label             `json:"emotion"`
	Confidence float64           `json:"confidence"`
	Scores     map[Label]float64 `json:"scores,omitempty"`
}

// Dominant returns the highest scoring label. Ties go to the label earliest
// in Labels. Without scores the reported Emotion is used.
func (r DetectionResult) Dominant() (Label, bool) {
	var (
		best      Label
		bestScore float64
		found     bool
	)
	for _, l := range Labels {
		s, ok := r.Scores[l]
		if !ok {
			continue
		}
		if !found || s > bestScore {
			best, bestScore, found = l, s, true
		}
	}
	if found {
		return best, true
	}
	if l, ok := ParseLabel(string(r.Emotion)); ok {
		return l, true
	}
	return "", false
}

// Detector is one stage of the cascade.
type Detector interface {
	Name() string
	Detect(ctx context.Context, frame *Frame) ([]DetectionResult, error)
}

// Chain runs detectors in order and returns the first non-empty result.
type Chain struct {
	stages []Detector
}

func NewChain(stages ...Detector) *Chain {
	return &Chain{stages: stages}
}

// Detect never fails: stage errors and panics count as no faces and the next
// stage is tried.
func (c *Chain) Detect(ctx context.Context, frame *Frame) []DetectionResult {
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return nil
	}
	for _, stage := range c.stages {
		if ctx.Err() != nil {
			break
		}
		results, err := runStage(ctx, stage, frame)
		if err != nil {
			telemetry.Warn("emotion.stage_failed", map[string]any{
				"stage": stage.Name(),
				"error": err.Error(),
			})
			continue
		}
		if len(results) > 0 {
			metrics.IncEmotionStage(stage.Name())
			telemetry.Info("emotion.stage_hit", map[string]any{
				"stage": stage.Name(),
				"faces": len(results),
			})
			return results
		}
	}
	metrics.IncEmotionStage("none")
	return nil
}

func runStage(ctx context.Context, stage Detector, frame *Frame) (results []DetectionResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return stage.Detect(ctx, frame)
}
