package form

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldNotFound is returned when an operation names a key the tree
	// does not hold.
	ErrFieldNotFound = errors.New("form: field not found")
	// ErrNotField is returned when a leaf operation targets a group.
	ErrNotField = errors.New("form: key does not hold a field")
	// ErrNotGroup is returned when a GroupRef targets a leaf field.
	ErrNotGroup = errors.New("form: key does not hold a group")
	// ErrIndexOutOfRange is returned when a GroupRef points past the group.
	ErrIndexOutOfRange = errors.New("form: group index out of range")
	// ErrInvalidNode is returned by AddField for values that are neither a
	// field, a group nor a group element.
	ErrInvalidNode = errors.New("form: unsupported node")
	// ErrValidatorFault wraps a rule that panicked or was misconfigured.
	ErrValidatorFault = errors.New("form: validator fault")
)

// FieldError reports the operation and key an error occurred on.
type FieldError struct {
	Op   string
	Name string
	Err  error
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("form: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RuleError reports a rule that could not be evaluated. It aborts the
// validation call it occurred in.
type RuleError struct {
	Field string
	Rule  string
	Cause any
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("form: rule %s on %q: %v", e.Rule, e.Field, e.Cause)
}

func (e *RuleError) Unwrap() error {
	return ErrValidatorFault
}

func fieldError(op, name string, err error) error {
	return &FieldError{Op: op, Name: name, Err: err}
}
