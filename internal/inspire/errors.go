package inspire

import (
	"errors"
	"fmt"
)

// Common errors returned by the INSPIRE client.
var (
	// ErrNetworkTimeout indicates the request did not complete within the timeout.
	ErrNetworkTimeout = errors.New("INSPIRE request timed out")

	// ErrConnectionFailure indicates the server could not be reached.
	ErrConnectionFailure = errors.New("connection to INSPIRE failed")

	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("record not found in INSPIRE")

	// ErrRateLimited indicates the server rejected the request with 429.
	ErrRateLimited = errors.New("INSPIRE rate limit exceeded")

	// ErrInvalidResponse indicates the body was not valid JSON.
	ErrInvalidResponse = errors.New("invalid response from INSPIRE")

	// ErrMissingField indicates an expected JSON path was absent.
	ErrMissingField = errors.New("field missing from INSPIRE record")
)

// APIError represents a non-success HTTP status from the API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("INSPIRE API error (status %d): %s", e.StatusCode, e.URL)
}

// IsTimeout returns true if the error indicates a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNetworkTimeout)
}

// IsConnectionFailure returns true if the server could not be reached.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrConnectionFailure)
}

// IsNotFound returns true if the error indicates a record was not found.
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

// failureReason maps an error to a short metrics label.
func failureReason(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNetworkTimeout):
		return "timeout"
	case errors.Is(err, ErrConnectionFailure):
		return "connection"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "other"
	}
}
