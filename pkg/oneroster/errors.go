package oneroster

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrTokenURLRequired  = errors.New("token URL is required for oauth2")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrNotFound          = errors.New("record not found")
)

const maxErrorBodyLength = 200

// GatewayTimeoutError is returned when the API answers 504. It is the only
// status that aborts a call instead of producing a Response.
type GatewayTimeoutError struct {
	Method Method
	Path   string
	Body   []byte
}

// Error implements the error interface.
func (e *GatewayTimeoutError) Error() string {
	return fmt.Sprintf("gateway timeout (504) for %s %s", e.Method, e.Path)
}

// DecodeError is returned when a successful response carries a JSON content
// type but a body that does not parse.
type DecodeError struct {
	Method     Method
	Path       string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s %s response (status %d): %v", e.Method, e.Path, e.StatusCode, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure raised by the transport (network, DNS, TLS,
// authentication). It is never produced from a received status code.
type TransportError struct {
	Method Method
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the transport's error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is produced by resource clients from a failed Response.
type APIError struct {
	StatusCode int
	Method     Method
	Path       string
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}

	if body == "" {
		body = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// NewAPIError builds an APIError from a failed response.
func NewAPIError(method Method, resp *Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode(),
		Method:     method,
		Path:       resp.RequestPath(),
		Body:       resp.RawBody(),
	}
}

// IsGatewayTimeout checks if the error is a gateway timeout.
func IsGatewayTimeout(err error) bool {
	gatewayErr := &GatewayTimeoutError{}

	return errors.As(err, &gatewayErr)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}

	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
