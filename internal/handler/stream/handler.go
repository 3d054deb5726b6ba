package stream

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/apierror"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatService "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/utils"
)

// Handler answers a question over Server-Sent Events.
type Handler struct {
	responder *ai.Responder
	chatSvc   *chatService.Service
	assistant string
}

// New creates a stream handler. assistant is the display name sent with the
// start event.
func New(responder *ai.Responder, chatSvc *chatService.Service, assistant string) *Handler {
	return &Handler{
		responder: responder,
		chatSvc:   chatSvc,
		assistant: assistant,
	}
}

// StreamResponse is the data payload of every event.
type StreamResponse struct {
	SessionID string        `json:"sessionId,omitempty"`
	Assistant string        `json:"assistant,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RegisterRoutes mounts the stream route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	conv, err := h.chatSvc.Conversation(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}
	if !h.responder.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, apierror.Message(ai.ErrNotConfigured))
		return
	}

	if _, err := conv.Submit(r.URL.Query().Get("message")); err != nil {
		if chatService.IsInputError(err) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	results, err := h.responder.Dispatch(r.Context(), conv)
	if err != nil {
		utils.RespondError(w, apierror.Status(err), apierror.Message(err))
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", StreamResponse{SessionID: sessionID, Assistant: h.assistant})

	if err := h.await(r.Context(), w, flusher, sessionID, results); err != nil {
		log.Infow("stream closed before the answer arrived", "session", sessionID, "error", err)
	}
}

// await forwards the dispatched result. The answer is still recorded when the
// client disconnects first.
func (h *Handler) await(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, results <-chan ai.Result) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-results:
		if result.Err != nil {
			utils.SendSSEEvent(w, flusher, "error", StreamResponse{
				SessionID: sessionID,
				Error:     apierror.Message(result.Err),
			})
			return nil
		}
		if result.Message != nil {
			utils.SendSSEEvent(w, flusher, "message", StreamResponse{SessionID: sessionID, Message: result.Message})
		}
		utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: sessionID, Finished: true})
		log.Infow("stream completed", "session", sessionID)
		return nil
	}
}
