package extraction

import (
	"errors"
	"fmt"
	"strings"

	"recruit-backend/internal/analyzer"
)

var (
	// ErrProviderUnavailable is reported when the model produced nothing and
	// heuristics could not fill the record. Retry later.
	ErrProviderUnavailable = analyzer.ErrProviderUnavailable
	// ErrUnprocessable is reported when the model answered but no complete
	// record could be built. Needs manual correction.
	ErrUnprocessable = errors.New("unprocessable document")
)

// Kind is the terminal failure class of an extraction.
type Kind int

const (
	KindProviderUnavailable Kind = iota + 1
	KindUnprocessable
)

func (k Kind) String() string {
	switch k {
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindUnprocessable:
		return "unprocessable"
	default:
		return "unknown"
	}
}

// Error describes a failed extraction.
type Error struct {
	Kind    Kind
	Schema  string
	Missing []string
	// Partial holds the cleaned fields that were present.
	Partial Record
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Schema, e.Kind)
	if len(e.Missing) > 0 {
		msg += " (missing " + strings.Join(e.Missing, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrProviderUnavailable:
		return e.Kind == KindProviderUnavailable
	case ErrUnprocessable:
		return e.Kind == KindUnprocessable
	}
	return false
}
