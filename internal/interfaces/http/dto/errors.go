package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown     = "ERR_UNKNOWN"
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeDataShape   = "ERR_DATA_SHAPE"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeAmbiguousPath  = "ERR_AMBIGUOUS_PATH"
	ErrCodeNotImplemented = "ERR_NOT_IMPLEMENTED"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeMissingClient   = "ERR_MISSING_CLIENT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeDataShape:   http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// A recognised but unsupported variant is rejected like any other bad input
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeAmbiguousPath:  http.StatusBadRequest,
	ErrCodeNotImplemented: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeMissingClient:   http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"VALIDATION_ERROR": ErrCodeValidation,
	"AMBIGUOUS_PATH":   ErrCodeAmbiguousPath,
	"NOT_IMPLEMENTED":  ErrCodeNotImplemented,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"DATA_SHAPE":       ErrCodeDataShape,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
