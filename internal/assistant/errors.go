package assistant

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for HTTP mapping and retry decisions.
type Kind string

const (
	KindRateLimited   Kind = "rate_limited"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindRunFailed     Kind = "run_failed"
	KindTimeout       Kind = "timeout"
	KindNotFound      Kind = "not_found"
	KindService       Kind = "server_error"
)

// QuotaDocsURL points callers at the provider's billing remediation page.
const QuotaDocsURL = "https://platform.openai.com/account/billing"

// Error carries a classified failure kind alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	DocsURL string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from an error chain, defaulting to KindService.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindService
}

// MessageOf extracts the classified message, falling back to the error text.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// Classify maps remote error text to a Kind by case-insensitive substring
// match. The provider does not expose structured error codes on every path,
// so this is a best-effort classifier; unknown text maps to KindService.
func Classify(text string) Kind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "exceeded your current quota"),
		strings.Contains(lower, "quota exceeded"):
		return KindQuotaExceeded
	case strings.Contains(lower, "rate_limit"),
		strings.Contains(lower, "rate limit"):
		return KindRateLimited
	case strings.Contains(lower, "not found"):
		return KindNotFound
	default:
		return KindService
	}
}

func quotaError(cause error) *Error {
	return &Error{
		Kind:    KindQuotaExceeded,
		Message: "API quota exceeded. Please try again later or contact support.",
		DocsURL: QuotaDocsURL,
		Err:     cause,
	}
}

func rateLimitError(cause error) *Error {
	return &Error{
		Kind:    KindRateLimited,
		Message: "Rate limit exceeded. Please try again later.",
		Err:     cause,
	}
}

func timeoutError() *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "Request timed out",
	}
}

func isRateLimited(err error) bool {
	if KindOf(err) == KindRateLimited {
		return true
	}
	var ae *Error
	if errors.As(err, &ae) {
		// Already classified as something else.
		return false
	}
	return Classify(err.Error()) == KindRateLimited
}
