package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument errors, raised synchronously at the point of misuse.
const (
	// ErrCodeInvalidArgument indicates a nil or non-iterable value, or a
	// pipeline built without transforms.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var knownCodes = map[ErrorCode]bool{
	ErrCodeInvalidArgument: true,
	ErrCodeInvalidInput:    true,
	ErrCodeMissingField:    true,
	ErrCodeNotFound:        true,
	ErrCodeInternal:        true,
}

// IsKnownCode reports whether code is one of the codes defined by this package.
func IsKnownCode(code ErrorCode) bool {
	return knownCodes[code]
}
