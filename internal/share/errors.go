package share

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidField marks a numeric field that is missing or cannot be parsed.
	ErrInvalidField = errors.New("invalid field")
	// ErrDivisionByZero marks a pool whose reported USD total is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// CalculationError reports which field stopped the calculation and why.
type CalculationError struct {
	Kind  error
	Field string
	Value string
	Err   error
}

func (e *CalculationError) Error() string {
	msg := fmt.Sprintf("calculation error: %s: %v", e.Field, e.Kind)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is match the error kind.
func (e *CalculationError) Is(target error) bool {
	return target == e.Kind
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

func invalidField(field, value string, err error) *CalculationError {
	return &CalculationError{Kind: ErrInvalidField, Field: field, Value: value, Err: err}
}
