package neurostore

import (
	"errors"
	"fmt"
)

// Common errors returned by the neurostore client.
var (
	// ErrNotFound indicates the resource was not found.
	ErrNotFound = errors.New("not found in neurostore")

	// ErrAuthError indicates a missing or invalid access token.
	ErrAuthError = errors.New("neurostore authentication error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with neurostore")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from neurostore")
)

// APIError represents an error response from the neurostore API.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("neurostore API error (status %d, %s): %s", e.StatusCode, e.Path, e.Message)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
