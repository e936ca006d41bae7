package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports markup that is not well-formed or does not follow
	// the nesting rules of the vocabulary.
	ErrMalformed = errors.New("malformed markup")
	// ErrUnknownTag reports a tag outside the vocabulary in a block
	// position. It matches ErrMalformed under errors.Is.
	ErrUnknownTag = fmt.Errorf("%w: unknown tag", ErrMalformed)
)

// DecodeError is returned by Unmarshal and Decode. Path locates the
// offending element, e.g. "doc/list[2]/li[0]".
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("markup decode: %v", e.Err)
	}
	return fmt.Sprintf("markup decode at %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func malformed(path, format string, args ...any) error {
	return &DecodeError{Path: path, Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)}
}
