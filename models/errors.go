package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeIndexUnavailable = "INDEX_UNAVAILABLE"
	ErrCodeIndexParse       = "INDEX_PARSE_FAILED"
	ErrCodeSKUNotFound      = "SKU_NOT_FOUND"
	ErrCodePageFetch        = "PAGE_FETCH_FAILED"
	ErrCodeTimeout          = "FETCH_TIMEOUT"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LookupError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type LookupError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(code, message string, err error) *LookupError {
	return &LookupError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *LookupError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first LookupError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeInternal
}
