package form

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned for mutations naming a field the form lacks.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidOption is returned when a value is not a legal option.
	ErrInvalidOption = errors.New("form: invalid option")
	// ErrOutOfRange is returned when a numeric value breaks its bound.
	ErrOutOfRange = errors.New("form: value out of range")
)

// FieldError reports a rejected mutation. The state returned alongside it is
// always the prior state.
type FieldError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("form: %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func fieldError(field, value string, kind error, reason string) *FieldError {
	return &FieldError{Field: field, Value: value, Reason: reason, Err: kind}
}
