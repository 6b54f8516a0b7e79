package interviews

import "errors"

var (
	ErrNotFound          = errors.New("interview record not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidInput      = errors.New("invalid input")
)
