package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an HTTP-status-carrying error from the backend: the request
// reached the server and came back non-2xx. It carries the structured error
// payload when the backend sent one.
type StatusError struct {
	Status     int
	StatusText string
	Message    string
	Payload    json.RawMessage
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
}

// UserMessage maps the status class to a message suitable for surfacing in
// the dashboard.
func (e *StatusError) UserMessage() string {
	switch {
	case e.Status == http.StatusUnauthorized:
		return "Authentication required. Please sign in again."
	case e.Status == http.StatusForbidden:
		return "You don't have permission to access this resource."
	case e.Status == http.StatusNotFound:
		return "The requested resource was not found."
	case e.Status >= 500:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return e.Error()
	}
}

// TransportError is a DNS/timeout/connection failure: the request never
// produced an HTTP response. Timeout distinguishes the bounded-timeout case.
type TransportError struct {
	Cause   error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timeout: %v", e.Cause)
	}
	return fmt.Sprintf("network request failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// AsStatusError returns the StatusError in err's chain, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// AsTransportError returns the TransportError in err's chain, if any.
func AsTransportError(err error) (*TransportError, bool) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	if statusErr, ok := AsStatusError(err); ok {
		return statusErr.Status == status
	}
	return false
}

// UserMessage converts any gateway error into a user-facing message.
func UserMessage(err error) string {
	if statusErr, ok := AsStatusError(err); ok {
		return statusErr.UserMessage()
	}
	if transportErr, ok := AsTransportError(err); ok {
		if transportErr.Timeout {
			return "The request timed out. Please check your connection and try again."
		}
		return "Could not reach the service. Please check your connection."
	}
	return err.Error()
}
