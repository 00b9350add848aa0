// Package errors defines the error taxonomy surfaced by the authentication
// service. Credential failures of every kind collapse into a single
// "unauthorized" code so callers cannot probe which check rejected them;
// internal faults keep a distinct "server_error" code and are never downgraded
// to unauthorized.
package errors

import (
	"errors"
	"fmt"
)

// Error codes surfaced in responses.
const (
	Unauthorized = "unauthorized"
	ServerError  = "server_error"
)

// ErrUnauthorized is the sentinel every credential failure wraps. Use
// errors.Is against it instead of matching descriptions.
var ErrUnauthorized = errors.New(Unauthorized)

// AuthError is the error shape returned across the service boundary.
type AuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match any unauthorized
// AuthError.
func (e *AuthError) Unwrap() error {
	if e.Code == Unauthorized {
		return ErrUnauthorized
	}
	return nil
}

// NewUnauthorized builds a credential failure. The description is for server
// logs and debugging clients; it deliberately stays coarse.
func NewUnauthorized(description string) *AuthError {
	return &AuthError{
		Code:        Unauthorized,
		Description: description,
	}
}

// NewServerError builds an internal fault (store unavailable, hashing
// failure). These propagate as 500s, never as unauthorized.
func NewServerError(description string) *AuthError {
	return &AuthError{
		Code:        ServerError,
		Description: description,
	}
}
