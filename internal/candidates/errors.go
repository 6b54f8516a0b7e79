package candidates

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("candidate not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateEmail = errors.New("a candidate with this email already exists")
)

// FileError names the upload that stopped an intake batch.
type FileError struct {
	FileName string
	Index    int
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %d (%s): %v", e.Index+1, e.FileName, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
