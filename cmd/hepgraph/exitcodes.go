package main

import (
	"errors"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
	"github.com/Benkendorfer/HEP-paper-graph/internal/inspire"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (bad config file or environment)
	ExitDataError    = 3 // Data error (malformed snapshot, unparsable response, no seeds)
	ExitNetworkError = 4 // INSPIRE unreachable, timed out or returned an error status
	ExitNotFound     = 5 // Record not found on INSPIRE or in the snapshot
)

// exitCodeFor maps a client or builder error to an exit code.
func exitCodeFor(err error) int {
	var apiErr *inspire.APIError
	switch {
	case err == nil:
		return ExitSuccess
	case inspire.IsNotFound(err):
		return ExitNotFound
	case inspire.IsTimeout(err), inspire.IsConnectionFailure(err),
		errors.Is(err, inspire.ErrRateLimited), errors.As(err, &apiErr):
		return ExitNetworkError
	case errors.Is(err, inspire.ErrInvalidResponse), errors.Is(err, graph.ErrNoSeeds):
		return ExitDataError
	default:
		return ExitError
	}
}
