package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/apierror"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatService "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/utils"
)

// Handler serves the REST surface of the support widget.
type Handler struct {
	chatSvc   *chatService.Service
	responder *ai.Responder
}

// New creates the chat handler. A nil or unconfigured responder keeps the
// transcript routes working while question routes answer 503.
func New(chatSvc *chatService.Service, responder *ai.Responder) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		responder: responder,
	}
}

// RegisterRoutes mounts the session routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Delete("/", h.handleEndSession)
		sr.Get("/messages", h.handleListMessages)
		sr.Post("/messages", h.handleSubmitMessage)
		sr.Post("/retry", h.handleRetry)
	})
}

type replyPayload struct {
	Status   string         `json:"status"`
	Reply    *chat.Message  `json:"reply,omitempty"`
	Messages []chat.Message `json:"messages"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infow("session created", "session", session.ID)
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.EndSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	log.Infow("session ended", "session", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSubmitMessage records the question and answers it within the request.
func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.chatSvc.Conversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	if !h.responder.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, apierror.Message(ai.ErrNotConfigured))
		return
	}

	if _, err := conv.Submit(payload.Content); err != nil {
		if chatService.IsInputError(err) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	h.respond(w, r, conv)
}

// handleRetry re-triggers the response for an unanswered question.
func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatSvc.Conversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	h.respond(w, r, conv)
}

// respond runs the call to completion even if the client goes away, so the
// answer still lands in the transcript.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, conv *chatService.Conversation) {
	reply, err := h.responder.Respond(context.WithoutCancel(r.Context()), conv)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) && !ai.IsEndpointError(err) {
			log.Warnw("respond rejected", "session", conv.Session().ID, "error", err)
		}
		utils.RespondError(w, apierror.Status(err), apierror.Message(err))
		return
	}

	status := "answered"
	if reply == nil {
		status = "idle"
	}
	utils.RespondJSON(w, http.StatusOK, replyPayload{
		Status:   status,
		Reply:    reply,
		Messages: conv.Messages(),
	})
}
