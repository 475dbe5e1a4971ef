package params

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrOutOfRange       = errors.New("value out of range")
	ErrNotAllowed       = errors.New("value not allowed")
)

// ValidationError describes a rejected parameter update.
type ValidationError struct {
	Kind   error
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Param, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Param, e.Kind, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}
