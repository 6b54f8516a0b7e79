package emotion

import (
	"context"
	"fmt"

	"recruit-backend/internal/shared/telemetry"
)

// LocateOptions tunes the classical cascade face locator.
type LocateOptions struct {
	ScaleFactor  float64 `json:"scale_factor"`
	MinNeighbors int     `json:"min_neighbors"`
	MinSize      int     `json:"min_size"`
}

// DefaultLocateOptions matches the tertiary stage thresholds.
var DefaultLocateOptions = LocateOptions{ScaleFactor: 1.1, MinNeighbors: 5, MinSize: 60}

// FaceLocator finds face rectangles without classifying them.
type FaceLocator interface {
	Locate(ctx context.Context, frame *Frame, opts LocateOptions) ([]Box, error)
}

const cropPadRatio = 0.10

// Cascade locates faces, pads and crops each one and scores the crops with a
// classifier that does no face finding of its own.
type Cascade struct {
	locator    FaceLocator
	classifier Detector
	opts       LocateOptions
}

func NewCascade(locator FaceLocator, classifier Detector) *Cascade {
	return &Cascade{locator: locator, classifier: classifier, opts: DefaultLocateOptions}
}

func (c *Cascade) Name() string { return "cascade" }

func (c *Cascade) Detect(ctx context.Context, frame *Frame) ([]DetectionResult, error) {
	if c.locator == nil || c.classifier == nil {
		return nil, fmt.Errorf("cascade stage not configured")
	}
	boxes, err := c.locator.Locate(ctx, frame, c.opts)
	if err != nil {
		return nil, fmt.Errorf("locate faces: %w", err)
	}
	var out []DetectionResult
	for _, box := range boxes {
		if box.Empty() {
			continue
		}
		crop := padBox(box).Rect().Intersect(frame.Bounds())
		face := frame.Crop(crop)
		if face == nil {
			continue
		}
		results, err := c.classifier.Detect(ctx, face)
		if err != nil {
			telemetry.Warn("emotion.crop_failed", map[string]any{
				"box":   box,
				"error": err.Error(),
			})
			continue
		}
		if len(results) == 0 {
			continue
		}
		r := results[0]
		if r.Box.Empty() {
			r.Box = box
		} else {
			r.Box.X += crop.Min.X
			r.Box.Y += crop.Min.Y
		}
		out = append(out, r)
	}
	return out, nil
}

// padBox grows b on every side by 10% of its larger dimension.
func padBox(b Box) Box {
	side := b.W
	if b.H > side {
		side = b.H
	}
	pad := int(float64(side) * cropPadRatio)
	return Box{X: b.X - pad, Y: b.Y - pad, W: b.W + 2*pad, H: b.H + 2*pad}
}
