// Package errors provides the shared error taxonomy for the ADS MCP server.
//
// Three categories exist: ValidationError for bad tool arguments (never reaches
// the network), UpstreamError for any failure talking to the ADS API, and
// ConfigurationError for fatal startup problems.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid or missing tool arguments.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("bad arguments: %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("bad arguments: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("bad arguments: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// UpstreamError indicates that a request to the ADS API failed: a non-success
// HTTP status, a network failure or timeout, or a malformed response body.
type UpstreamError struct {
	Endpoint   string // API path, e.g. "/search/query"
	Status     int    // HTTP status; 0 when no response was received
	Message    string // short remote-provided or transport message
	RetryAfter string // Retry-After header value on rate-limit replies
}

func (e *UpstreamError) Error() string {
	msg := "upstream request failed"
	if e.Endpoint != "" {
		msg += " (" + e.Endpoint + ")"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter != "" {
		msg += " (retry after " + e.RetryAfter + "s)"
	}
	return msg
}

// RateLimited reports whether the remote service rejected the request for rate limiting.
func (e *UpstreamError) RateLimited() bool {
	return e.Status == 429
}

// NewUpstreamError creates an UpstreamError.
func NewUpstreamError(endpoint string, status int, message string) *UpstreamError {
	return &UpstreamError{
		Endpoint: endpoint,
		Status:   status,
		Message:  message,
	}
}

// ConfigurationError indicates a fatal startup problem such as a missing credential.
type ConfigurationError struct {
	Key     string // environment key, e.g. "ADS_API_TOKEN"
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
	}
	return "configuration error: " + e.Message
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUpstream returns true if err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}

// IsConfiguration returns true if err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
