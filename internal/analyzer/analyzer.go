package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recruit-backend/internal/llm"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// ErrProviderUnavailable means the model could not be reached or refused
// service. Callers should retry later.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Analyzer wraps a provider with a bounded retry policy.
type Analyzer struct {
	provider    llm.Provider
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithBackoff overrides the fixed delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.backoff = d
		}
	}
}

// WithSleep replaces the wait function, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.sleep = fn
		}
	}
}

// New builds an Analyzer around provider.
func New(provider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider:    provider,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze sends prompt to the provider and returns the trimmed body.
// Quota and rate-limit failures stop immediately; other failures are retried
// with a fixed delay until the attempt budget is spent. Every failure is
// reported as ErrProviderUnavailable wrapping the last provider error.
func (a *Analyzer) Analyze(ctx context.Context, prompt string, shape llm.OutputShape) (string, error) {
	if a == nil || a.provider == nil {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, llm.ErrNotConfigured)
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		metrics.IncAnalyzerAttempts()

		out, err := a.provider.Generate(ctx, prompt, shape)
		if err == nil {
			trimmed := strings.TrimSpace(out)
			if trimmed == "" {
				return "", fmt.Errorf("%w: empty response", ErrProviderUnavailable)
			}
			return trimmed, nil
		}

		lastErr = err
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		if IsQuotaError(err) {
			metrics.IncAnalyzerQuotaAborts()
			telemetry.Error("analyzer.quota_exceeded", map[string]any{
				"attempt": attempt,
				"shape":   shape.String(),
				"error":   err.Error(),
			})
			return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}

		telemetry.Error("analyzer.attempt_failed", map[string]any{
			"attempt":      attempt,
			"max_attempts": a.maxAttempts,
			"shape":        shape.String(),
			"error":        err.Error(),
		})
		if attempt < a.maxAttempts {
			if err := a.sleep(ctx, a.backoff); err != nil {
				return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
			}
		}
	}
	return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, lastErr)
}

// IsQuotaError reports whether err looks like a quota or rate-limit refusal.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
