package obfuscate

import "github.com/sqlvibe/obfuscate/internal/OB"

// Error kinds, re-exported from internal/OB so callers never need to
// import the internal package directly.
const (
	ErrUnsupportedType = OB.ErrUnsupportedType
	ErrLogical         = OB.ErrLogical
	ErrFormatVersion   = OB.ErrFormatVersion
	ErrSchemaMismatch  = OB.ErrSchemaMismatch
	ErrTypeMismatch    = OB.ErrTypeMismatch
)

// Error is the structured error type every obfuscate operation returns
// on failure.
type Error = OB.Error

// ErrorCode identifies the kind of failure behind an Error.
type ErrorCode = OB.ErrorCode

var (
	NewError = OB.NewError
	Errorf   = OB.Errorf
	CodeOf   = OB.CodeOf
)
