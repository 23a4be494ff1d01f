package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses, per-source results and internal error handling.
const (
	// Request-level: abort the whole request before any scraping.
	ErrCodeAuthorization = "AUTHORIZATION_FAILED"
	ErrCodeInvalidTarget = "INVALID_TARGET"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternal      = "INTERNAL_ERROR"

	// Per-source: reported inside a failed ScrapeResult.
	ErrCodeConfigMissing  = "CONFIGURATION_MISSING"
	ErrCodeInvalidURL     = "INVALID_URL"
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeEmptyContent   = "EMPTY_CONTENT"
	ErrCodeParseFailed    = "PARSE_FAILED"
	ErrCodeNotImplemented = "NOT_IMPLEMENTED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsScrapeError unwraps err into a *ScrapeError, wrapping unknown errors as internal.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}

// HasCode reports whether err is a ScrapeError with the given code.
func HasCode(err error, code string) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == code
}
