package llm

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the LLM client and providers.
var (
	// ErrEmptyAPIKey indicates that an API key was required but missing.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates that the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrNoResponseChoice indicates a response with no valid choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// ErrorType categorizes provider errors for standardized handling,
// in particular for deciding retryability.
type ErrorType int

const (
	// ErrorTypeUnknown indicates an error of an undetermined category.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuthentication indicates an invalid or rejected API key.
	ErrorTypeAuthentication
	// ErrorTypeRateLimit indicates that a rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest indicates malformed parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates a missing resource such as a model.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a provider-side failure.
	ErrorTypeServerError
	// ErrorTypeContentPolicy indicates a content-policy block.
	ErrorTypeContentPolicy
	// ErrorTypeTimeout indicates that the request deadline expired.
	ErrorTypeTimeout
	// ErrorTypeCanceled indicates that the request context was canceled.
	ErrorTypeCanceled
)

// ProviderError normalizes provider-specific failures into a common shape
// that judge adapters translate into domain failure reasons.
type ProviderError struct {
	// Type classifies the error into a standard category.
	Type ErrorType
	// Provider names the LLM provider that produced the error.
	Provider string
	// StatusCode holds the HTTP status from the response, if applicable.
	StatusCode int
	// Message is the provider's user-facing error message.
	Message string
	// WrappedError holds the original error for unwrapping.
	WrappedError error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if s := e.typeString(); s != "" {
		base += fmt.Sprintf(" [%s]", s)
	}
	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}
	return base
}

// Unwrap returns the wrapped error for errors.Is / errors.As.
func (e *ProviderError) Unwrap() error { return e.WrappedError }

// IsTimeout reports whether the failure was a deadline expiry.
func (e *ProviderError) IsTimeout() bool { return e.Type == ErrorTypeTimeout }

// IsRetryable reports whether a request failing with this error is worth
// retrying: rate limits, server errors, and timeouts are transient.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeServerError:
		return "server_error"
	case ErrorTypeContentPolicy:
		return "content_policy"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return ""
	}
}

// NewProviderError builds a standardized provider error.
func NewProviderError(provider string, errType ErrorType, statusCode int, message string, wrapped error) *ProviderError {
	return &ProviderError{
		Type:         errType,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ErrorClassifier converts provider-specific errors into ProviderError
// instances using HTTP status codes and context state.
type ErrorClassifier struct {
	// Provider names the LLM provider this classifier serves.
	Provider string
}

// ClassifyHTTPError maps an HTTP status code to a ProviderError.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, err error) *ProviderError {
	var errType ErrorType

	switch {
	case statusCode == 401 || statusCode == 403:
		errType = ErrorTypeAuthentication
		message = fmt.Sprintf("%s authentication failed", ec.Provider)
	case statusCode == 429:
		errType = ErrorTypeRateLimit
		message = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
	case statusCode == 400:
		errType = ErrorTypeBadRequest
	case statusCode == 404:
		errType = ErrorTypeNotFound
	case statusCode >= 500:
		errType = ErrorTypeServerError
	case statusCode >= 400:
		errType = ErrorTypeBadRequest
	default:
		errType = ErrorTypeUnknown
	}

	return NewProviderError(ec.Provider, errType, statusCode, message, err)
}

// ClassifyContextError maps context.DeadlineExceeded and context.Canceled
// to their ProviderError categories.
func (ec *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ec.Provider, ErrorTypeTimeout, 0, "request deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(ec.Provider, ErrorTypeCanceled, 0, "request canceled", err)
	default:
		return NewProviderError(ec.Provider, ErrorTypeUnknown, 0, "", err)
	}
}
