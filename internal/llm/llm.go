package llm

import (
	"context"
	"errors"
)

// OutputShape tells the provider what kind of body is expected back.
type OutputShape int

const (
	// StructuredJSON asks for a single JSON object.
	StructuredJSON OutputShape = iota
	// PlainText asks for free text.
	PlainText
)

func (s OutputShape) String() string {
	switch s {
	case StructuredJSON:
		return "structured_json"
	case PlainText:
		return "plain_text"
	default:
		return "unknown"
	}
}

// Provider abstracts a generative model endpoint. Implementations are
// constructed once at startup and shared.
type Provider interface {
	Generate(ctx context.Context, prompt string, shape OutputShape) (string, error)
}

// ErrNotConfigured is returned by the placeholder provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderProvider is used when no provider credentials are present.
type PlaceholderProvider struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderProvider) Generate(ctx context.Context, prompt string, shape OutputShape) (string, error) {
	_ = ctx
	_ = prompt
	_ = shape
	return "", ErrNotConfigured
}
