package shared

import "errors"

// Error codes shared by every layer. The HTTP layer maps them to status codes.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeAmbiguousPath  = "AMBIGUOUS_PATH"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeDataShape      = "DATA_SHAPE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so sentinels work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsValidation reports whether the code is rejected as a bad request.
// Ambiguous path and not-implemented errors are validation subtypes.
func (e *DomainError) IsValidation() bool {
	switch e.Code {
	case CodeValidation, CodeAmbiguousPath, CodeNotImplemented, CodeInvalidInput:
		return true
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a not-found error with the given message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewNotImplementedError marks a recognised but unsupported variant.
func NewNotImplementedError(message string) *DomainError {
	return NewDomainError(CodeNotImplemented, message)
}

// WrapDomainError attaches a cause to a new domain error
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation     = NewDomainError(CodeValidation, "Validation failed")
	ErrAmbiguousPath  = NewDomainError(CodeAmbiguousPath, "Ambiguous report path")
	ErrNotImplemented = NewDomainError(CodeNotImplemented, "Not implemented")
	ErrDataShape      = NewDomainError(CodeDataShape, "Stored data does not match report configuration")
)
