package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
)

// ErrorKind classifies an extraction failure.
type ErrorKind string

const (
	ErrKindRateLimit     ErrorKind = "rate_limit"     // local or remote throttling, retryable
	ErrKindQuotaExceeded ErrorKind = "quota_exceeded" // hard provider quota, needs operator intervention
	ErrKindAPIError      ErrorKind = "api_error"      // catch-all, not retryable by default
	ErrKindTimeout       ErrorKind = "timeout"        // call exceeded deadline, retryable
	ErrKindNetwork       ErrorKind = "network"        // DNS/connection failure, retryable
	ErrKindValidation    ErrorKind = "validation"     // malformed response, same input reproduces it
)

// Error is a classified provider failure. It is raised within a single
// adapter call, intercepted by WithRetry, and either retried or
// propagated to the orchestrator.
type Error struct {
	Kind           ErrorKind
	Message        string
	StatusCode     int
	RetryAfterSecs int // explicit provider backoff, 0 if absent
	Provider       string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (%s, status %d)", e.Provider, e.Message, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Kind)
}

// NewError creates a classified Error.
func NewError(provider string, kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Provider: provider}
}

// NewValidationError creates a validation error carrying the raw model
// output (truncated) for diagnostics.
func NewValidationError(provider, message, raw string) *Error {
	return &Error{
		Kind:     ErrKindValidation,
		Message:  fmt.Sprintf("%s (raw: %s)", message, Truncate(raw, 500)),
		Provider: provider,
	}
}

// ClassifyStatus maps a provider HTTP status code onto the error taxonomy.
func ClassifyStatus(provider string, status int, body string) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{
			Kind:           ErrKindRateLimit,
			Message:        "API rate limit exceeded",
			StatusCode:     status,
			RetryAfterSecs: 60,
			Provider:       provider,
		}
	case status == http.StatusForbidden || status == http.StatusPaymentRequired:
		return &Error{
			Kind:       ErrKindQuotaExceeded,
			Message:    fmt.Sprintf("provider quota exceeded: %s", Truncate(body, 200)),
			StatusCode: status,
			Provider:   provider,
		}
	case status >= 500:
		return &Error{
			Kind:       ErrKindNetwork,
			Message:    fmt.Sprintf("provider unavailable: %s", Truncate(body, 200)),
			StatusCode: status,
			Provider:   provider,
		}
	default:
		return &Error{
			Kind:       ErrKindAPIError,
			Message:    fmt.Sprintf("API error: %s", Truncate(body, 200)),
			StatusCode: status,
			Provider:   provider,
		}
	}
}

// ClassifyTransport maps a transport-level error (DNS, connection reset,
// exceeded deadline) onto the error taxonomy. Already-classified errors
// pass through unchanged.
func ClassifyTransport(provider string, err error) *Error {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrKindTimeout, Message: "request timeout", Provider: provider}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: ErrKindTimeout, Message: "request timeout", Provider: provider}
		}
		return &Error{Kind: ErrKindNetwork, Message: fmt.Sprintf("network error: %v", err), Provider: provider}
	}
	return &Error{Kind: ErrKindAPIError, Message: err.Error(), Provider: provider}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
