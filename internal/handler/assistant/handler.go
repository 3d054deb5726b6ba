package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/utils"
)

// Handler exposes the widget presentation profile.
type Handler struct {
	profile knowledge.Profile
	enabled func() bool
}

// New creates the assistant handler. enabled reports whether answers can be
// generated; nil means they cannot.
func New(profile knowledge.Profile, enabled func() bool) *Handler {
	return &Handler{
		profile: profile,
		enabled: enabled,
	}
}

// RegisterRoutes mounts the profile route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistant", h.handleProfile)
}

type profilePayload struct {
	knowledge.Profile
	Available bool `json:"available"`
}

func (h *Handler) handleProfile(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, profilePayload{
		Profile:   h.profile,
		Available: h.enabled != nil && h.enabled(),
	})
}
