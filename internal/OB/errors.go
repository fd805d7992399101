// Package OB implements the column-agnostic primitives that back the
// obfuscator's per-type models: the keyed hash, the Feistel permutation,
// the code-point codec, and the Markov histogram table.
package OB

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of failure a model or the aggregator can
// raise. All are fatal for the current job.
type ErrorCode int32

const (
	ErrOK ErrorCode = iota
	// ErrUnsupportedType means the factory cannot build a model for a declared type.
	ErrUnsupportedType
	// ErrLogical means an invariant was broken, e.g. Markov back-off found no context at all.
	ErrLogical
	// ErrFormatVersion means a loaded model's version byte is unknown.
	ErrFormatVersion
	// ErrSchemaMismatch means the loaded column count or type names differ from the current schema.
	ErrSchemaMismatch
	// ErrTypeMismatch means a column passed to Train/Generate doesn't match the model's declared type.
	ErrTypeMismatch
)

func (c ErrorCode) String() string {
	switch c {
	case ErrOK:
		return "OK"
	case ErrUnsupportedType:
		return "UNSUPPORTED_TYPE"
	case ErrLogical:
		return "LOGICAL_ERROR"
	case ErrFormatVersion:
		return "FORMAT_VERSION_MISMATCH"
	case ErrSchemaMismatch:
		return "SCHEMA_MISMATCH"
	case ErrTypeMismatch:
		return "TYPE_MISMATCH"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int32(c))
	}
}

// Error is a structured obfuscator error carrying a code, a message, and
// an optional wrapped underlying error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a new *Error with the given code and message.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Errorf creates a new *Error with the given code and a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode carried by err: ErrOK for a nil err,
// ErrLogical for an error that isn't an *Error, and the wrapped code
// otherwise.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrLogical
}
