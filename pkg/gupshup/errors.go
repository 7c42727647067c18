package gupshup

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSendFailed is matched by every error returned from Sender.SendMessage.
	ErrSendFailed = errors.New("gupshup: send failed")

	// ErrNotImplemented is returned by endpoints this client does not support yet.
	ErrNotImplemented = errors.New("gupshup: not implemented")

	// ErrInvalidTemplate is returned when a template submission fails validation.
	ErrInvalidTemplate = errors.New("gupshup: invalid template")

	// ErrInvalidDLREvent is returned for event modes outside the supported set.
	ErrInvalidDLREvent = errors.New("gupshup: invalid dlr event")

	// errInvalidToken marks a partner token that must be refreshed.
	errInvalidToken = errors.New("gupshup: invalid partner token")
)

// APIError represents a non-2xx response from the Gupshup API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gupshup: %s %s: http %d: %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// Message returns the provider's error message, falling back to the raw body and
// then to the HTTP status text.
func (e *APIError) Message() string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		return body
	}
	return http.StatusText(e.StatusCode)
}

// TransportError wraps connection, TLS, DNS and context failures.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gupshup: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SendError is returned by Sender.SendMessage. StatusCode and Body are set when the
// provider answered.
type SendError struct {
	Destination string
	StatusCode  int
	Body        []byte
	Err         error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("gupshup: send to %s: %v", e.Destination, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

func (e *SendError) Is(target error) bool { return target == ErrSendFailed }

func sendFailed(destination string, err error) error {
	sendErr := &SendError{Destination: destination, Err: err}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		sendErr.StatusCode = apiErr.StatusCode
		sendErr.Body = apiErr.Body
	}
	return sendErr
}

func notImplemented(method string) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, method)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
