package translate

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned when a document needs more characters than
// the provider account has left. Nothing is sent or written in that case.
var ErrQuotaExceeded = errors.New("translation quota exceeded")

// FileError reports a failure tied to one document.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func fileErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FileError{Path: path, Op: op, Err: err}
}
