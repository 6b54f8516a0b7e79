package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the face/emotion detector service. Frames are posted as raw
// BGR24 pixels.
//
//	POST {base}/v1/emotions?align=true|false&width=W&height=H
//	  -> {"faces": [{"box": {...}, "emotions": {"happy": 91.2, ...}}]}
//	POST {base}/v1/faces?width=W&height=H&min_neighbors=5&min_size=60&scale_factor=1.1
//	  -> {"faces": [{"x": 1, "y": 2, "w": 3, "h": 4}]}
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("EMOTION_DETECTOR_URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid EMOTION_DETECTOR_URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}, nil
}

// Aligned is the primary stage: the service finds and aligns faces itself.
func (c *Client) Aligned() Detector { return classifierStage{client: c, align: true} }

// Plain scores the frame with the same classifier but no alignment assist.
func (c *Client) Plain() Detector { return classifierStage{client: c, align: false} }

// Chain builds the standard three stage cascade.
func (c *Client) Chain() *Chain {
	return NewChain(c.Aligned(), c.Plain(), NewCascade(c, c.Plain()))
}

type classifierStage struct {
	client *Client
	align  bool
}

func (s classifierStage) Name() string {
	if s.align {
		return "aligned"
	}
	return "plain"
}

func (s classifierStage) Detect(ctx context.Context, frame *Frame) ([]DetectionResult, error) {
	q := frameQuery(frame)
	q.Set("align", strconv.FormatBool(s.align))
	var parsed struct {
		Faces []struct {
			Box      Box                `json:"box"`
			Emotions map[string]float64 `json:"emotions"`
		} `json:"faces"`
	}
	if err := s.client.post(ctx, "/v1/emotions", q, frame, &parsed); err != nil {
		return nil, err
	}
	out := make([]DetectionResult, 0, len(parsed.Faces))
	for _, face := range parsed.Faces {
		scores := make(map[Label]float64, len(face.Emotions))
		for raw, score := range face.Emotions {
			if l, ok := ParseLabel(raw); ok {
				scores[l] = score
			}
		}
		r := DetectionResult{Box: face.Box, Scores: scores}
		label, ok := r.Dominant()
		if !ok {
			continue
		}
		r.Emotion = label
		r.Confidence = scores[label]
		out = append(out, r)
	}
	return out, nil
}

// Locate runs the classical cascade face locator.
func (c *Client) Locate(ctx context.Context, frame *Frame, opts LocateOptions) ([]Box, error) {
	q := frameQuery(frame)
	q.Set("min_neighbors", strconv.Itoa(opts.MinNeighbors))
	q.Set("min_size", strconv.Itoa(opts.MinSize))
	if opts.ScaleFactor > 0 {
		q.Set("scale_factor", strconv.FormatFloat(opts.ScaleFactor, 'f', -1, 64))
	}
	var parsed struct {
		Faces []Box `json:"faces"`
	}
	if err := c.post(ctx, "/v1/faces", q, frame, &parsed); err != nil {
		return nil, err
	}
	return parsed.Faces, nil
}

func frameQuery(frame *Frame) url.Values {
	q := url.Values{}
	q.Set("width", strconv.Itoa(frame.Width))
	q.Set("height", strconv.Itoa(frame.Height))
	return q
}

func (c *Client) post(ctx context.Context, path string, q url.Values, frame *Frame, out any) error {
	endpoint := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(frame.Pix))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Pixel-Format", "bgr24")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("emotion detector request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("emotion detector http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("emotion detector response parse: %w", err)
	}
	return nil
}

var _ FaceLocator = (*Client)(nil)
