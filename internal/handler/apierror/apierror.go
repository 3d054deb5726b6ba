// Package apierror maps service errors onto HTTP statuses shared by the REST,
// SSE and WebSocket surfaces.
package apierror

import (
	"errors"
	"net/http"

	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case chatservice.IsInputError(err):
		return http.StatusOK
	case errors.Is(err, chatservice.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatservice.ErrTurnPending), errors.Is(err, chatservice.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case ai.IsEndpointError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing text for err. Endpoint failures keep the
// provider detail so the operator can see what went wrong.
func Message(err error) string {
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return "the assistant is not configured: " + err.Error()
	case ai.IsEndpointError(err):
		return "the assistant could not answer right now, please try again: " + err.Error()
	default:
		return err.Error()
	}
}
