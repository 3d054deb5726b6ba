package ai

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is the configuration error raised when no generation
// credential is available. Every endpoint call is refused until it is fixed.
var ErrNotConfigured = errors.New("generation endpoint is not configured")

// ErrEmptyResponse marks a generation that returned no usable text.
var ErrEmptyResponse = errors.New("generation endpoint returned an empty response")

// EndpointError reports a failed or unusable generation call. The pending
// question stays unanswered so the turn can be retried.
type EndpointError struct {
	Provider string
	Err      error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// IsEndpointError reports whether err is an EndpointError.
func IsEndpointError(err error) bool {
	var endpointErr *EndpointError
	return errors.As(err, &endpointErr)
}
