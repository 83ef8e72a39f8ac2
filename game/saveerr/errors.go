// Package saveerr defines the error kinds returned by the save editor core.
// Callers branch on them with errors.As.
package saveerr

import (
	"errors"
	"fmt"
)

// StructuralError reports truncated or corrupt input at a byte offset.
type StructuralError struct {
	Offset int
	Msg    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at 0x%X: %s", e.Offset, e.Msg)
}

// ValidationError is a business-rule violation with a machine-checkable code.
// Slot is -1 when the violation is not tied to a slot.
type ValidationError struct {
	Code string
	Slot int
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("%s (slot %d): %s", e.Code, e.Slot, e.Msg)
	}
	if e.Msg == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// CapacityError means a fixed-size table has no free room.
type CapacityError struct {
	Resource string
}

func (e *CapacityError) Error() string {
	return "no free capacity: " + e.Resource
}

// LookupError means a referenced handle or id does not exist.
type LookupError struct {
	Kind string
	ID   int64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Invalid builds a ValidationError.
func Invalid(code string, slot int, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Slot: slot, Msg: fmt.Sprintf(format, args...)}
}

// Structural builds a StructuralError.
func Structural(off int, format string, args ...any) *StructuralError {
	return &StructuralError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Code classifies err for logs and API responses: the validation code, or
// structural, capacity, lookup. Unknown errors yield "internal", nil yields "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		se *StructuralError
		ce *CapacityError
		le *LookupError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Code
	case errors.As(err, &ce):
		return "capacity"
	case errors.As(err, &le):
		return "not-found"
	case errors.As(err, &se):
		return "structural"
	}
	return "internal"
}
