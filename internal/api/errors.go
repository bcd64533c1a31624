package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (unreachable host, reset connection)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates a missing, expired or rejected token or bad credentials
	ErrTypeAuth
	// ErrTypeHTTP indicates an HTTP-level error (non-2xx status code)
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the agent address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents an error that occurred while talking to the agent
type APIError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Detail     string    // "detail" text from the agent's error body (if any)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error type
func ClassifyNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{Type: ErrTypeTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &APIError{Type: ErrTypeConnectionRefused, Message: "agent refused connection", Err: err}
	}
	if errors.Is(err, syscall.EHOSTUNREACH) {
		return &APIError{Type: ErrTypeNetwork, Message: "host unreachable", Err: err}
	}

	return &APIError{Type: ErrTypeNetwork, Message: "network error occurred", Err: err}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *APIError {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &APIError{Type: ErrTypeNetwork, Message: message}
	}
	if classified.Type == ErrTypeNetwork {
		classified.Message = message
	}
	return classified
}

// NewStatusError creates an error for a non-2xx response. body is the
// response body, which is searched for a "detail" field.
func NewStatusError(statusCode int, body []byte) *APIError {
	e := &APIError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)),
		StatusCode: statusCode,
		Detail:     parseDetail(body),
	}
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		e.Type = ErrTypeAuth
		e.Message = "not authorized"
	}
	return e
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *APIError {
	return &APIError{Type: ErrTypeParse, Message: message, Err: err}
}

// parseDetail extracts the agent's error text. "detail" is normally a string;
// request validation failures send a list of {"msg": ...} objects instead.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Msg    string          `json:"msg"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) == 0 {
		return envelope.Msg
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeNetwork ||
			apiErr.Type == ErrTypeTimeout ||
			apiErr.Type == ErrTypeConnectionRefused ||
			apiErr.Type == ErrTypeDNS
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeAuth
	}
	return false
}

// DetailText returns the text to show the operator for a failed request:
// the agent's detail message when it sent one, otherwise a short
// description of the failure.
func DetailText(err error) string {
	if apiErr, ok := asAPIError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return ShortMessage(err)
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "Agent not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Agent refused connection - is it running?"
	case ErrTypeDNS:
		return "Cannot resolve agent hostname"
	case ErrTypeAuth:
		return "Not authorized - log in again"
	case ErrTypeNetwork:
		return "Network error - check the agent address"
	case ErrTypeHTTP:
		return fmt.Sprintf("Agent returned HTTP %d", apiErr.StatusCode)
	case ErrTypeParse:
		return "Unexpected response from agent"
	default:
		return apiErr.Error()
	}
}

// TroubleshootingHint returns advice for an error, or "" when there is none.
func TroubleshootingHint(err error) string {
	apiErr, ok := asAPIError(err)
	if !ok {
		return ""
	}

	switch apiErr.Type {
	case ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeNetwork:
		return strings.Join([]string{
			"Troubleshooting:",
			"  • Check the agent address (--server or PROXYCFG_SERVER)",
			"  • Verify the agent process is running",
			"  • Run 'proxycfg scan' to look for agents on the local network",
		}, "\n")
	case ErrTypeDNS:
		return "Use the agent's IP address instead of its hostname."
	case ErrTypeAuth:
		return "Run 'proxycfg login' to obtain a new token."
	default:
		return ""
	}
}
