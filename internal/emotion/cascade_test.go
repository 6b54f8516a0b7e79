package emotion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocator struct {
	boxes []Box
	err   error
	opts  LocateOptions
}

func (s *stubLocator) Locate(ctx context.Context, frame *Frame, opts LocateOptions) ([]Box, error) {
	_ = ctx
	_ = frame
	s.opts = opts
	return s.boxes, s.err
}

type cropRecorder struct {
	sizes  [][2]int
	result func(i int) ([]DetectionResult, error)
}

func (c *cropRecorder) Name() string { return "plain" }

func (c *cropRecorder) Detect(ctx context.Context, frame *Frame) ([]DetectionResult, error) {
	_ = ctx
	c.sizes = append(c.sizes, [2]int{frame.Width, frame.Height})
	return c.result(len(c.sizes) - 1)
}

func blankFrame(w, h int) *Frame {
	return &Frame{Width: w, Height: h, Pix: make([]byte, w*h*3)}
}

func TestCascadePadsClampsAndSkips(t *testing.T) {
	locator := &stubLocator{boxes: []Box{
		{X: 0, Y: 0, W: 50, H: 50},
		{X: 100, Y: 100, W: 60, H: 60},
		{X: 1000, Y: 1000, W: 80, H: 80},
		{X: 10, Y: 10, W: 0, H: 30},
	}}
	classifier := &cropRecorder{result: func(i int) ([]DetectionResult, error) {
		return []DetectionResult{face(Happy)}, nil
	}}

	got, err := NewCascade(locator, classifier).Detect(context.Background(), blankFrame(400, 400))
	require.NoError(t, err)
	assert.Equal(t, DefaultLocateOptions, locator.opts)
	assert.Equal(t, 5, locator.opts.MinNeighbors)
	assert.Equal(t, 60, locator.opts.MinSize)

	assert.Equal(t, [][2]int{{55, 55}, {72, 72}}, classifier.sizes)
	require.Len(t, got, 2)
	assert.Equal(t, Box{X: 0, Y: 0, W: 50, H: 50}, got[0].Box)
	assert.Equal(t, Box{X: 100, Y: 100, W: 60, H: 60}, got[1].Box)
}

func TestCascadeMapsCropBoxesToImageCoordinates(t *testing.T) {
	locator := &stubLocator{boxes: []Box{{X: 100, Y: 100, W: 60, H: 60}}}
	classifier := &cropRecorder{result: func(int) ([]DetectionResult, error) {
		r := face(Sad)
		r.Box = Box{X: 2, Y: 3, W: 10, H: 12}
		return []DetectionResult{r}, nil
	}}

	got, err := NewCascade(locator, classifier).Detect(context.Background(), blankFrame(400, 400))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Box{X: 96, Y: 97, W: 10, H: 12}, got[0].Box)
}

func TestCascadeSkipsFailedCrops(t *testing.T) {
	locator := &stubLocator{boxes: []Box{{X: 0, Y: 0, W: 60, H: 60}, {X: 200, Y: 200, W: 60, H: 60}, {X: 300, Y: 50, W: 60, H: 60}}}
	classifier := &cropRecorder{result: func(i int) ([]DetectionResult, error) {
		switch i {
		case 0:
			return nil, errors.New("bad crop")
		case 1:
			return nil, nil
		default:
			return []DetectionResult{face(Neutral)}, nil
		}
	}}

	got, err := NewCascade(locator, classifier).Detect(context.Background(), blankFrame(400, 400))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Neutral, got[0].Emotion)
}

func TestCascadeLocatorError(t *testing.T) {
	_, err := NewCascade(&stubLocator{err: errors.New("down")}, &cropRecorder{}).Detect(context.Background(), blankFrame(10, 10))
	require.Error(t, err)

	_, err = NewCascade(nil, nil).Detect(context.Background(), blankFrame(10, 10))
	require.Error(t, err)
}
