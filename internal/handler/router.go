package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/assistant"
	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/stream"
	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/ws"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	aiService "github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatService "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. responder may be nil when no
// generation credential is configured.
func NewRouter(profile knowledge.Profile, chatSvc *chatService.Service, responder *aiService.Responder) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
			"ai":       responder.Enabled(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		assistant.New(profile, responder.Enabled).RegisterRoutes(api)
		chat.New(chatSvc, responder).RegisterRoutes(api)
		stream.New(responder, chatSvc, profile.AssistantName).RegisterRoutes(api)
		ws.New(responder, chatSvc).RegisterRoutes(api)
	})

	return r
}
