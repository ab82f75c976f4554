package models

import "fmt"

// Error codes. The code doubles as the stable stage prefix of every error
// message the crawler returns.
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnsupportedKind = "UNSUPPORTED_RESOURCE_KIND"
	ErrCodeBrowserLaunch   = "BROWSER_LAUNCH_FAILED"
	ErrCodeNavigation      = "NAVIGATION_FAILED"
	ErrCodeExtraction      = "EXTRACTION_FAILED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeBusy            = "BUSY"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. They match any CrawlError with the same code.
var (
	ErrInvalidInput    = &CrawlError{Code: ErrCodeInvalidInput}
	ErrUnsupportedKind = &CrawlError{Code: ErrCodeUnsupportedKind}
	ErrBrowserLaunch   = &CrawlError{Code: ErrCodeBrowserLaunch}
	ErrNavigation      = &CrawlError{Code: ErrCodeNavigation}
	ErrExtraction      = &CrawlError{Code: ErrCodeExtraction}
)

// CrawlError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CrawlError struct {
	Code    string
	Message string
	Err     error // wrapped cause
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a CrawlError with the same code.
func (e *CrawlError) Is(target error) bool {
	t, ok := target.(*CrawlError)
	return ok && t.Code == e.Code
}

// NewCrawlError creates a new CrawlError.
func NewCrawlError(code, message string, err error) *CrawlError {
	return &CrawlError{Code: code, Message: message, Err: err}
}
