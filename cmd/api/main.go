package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/swiftcart-support/backend/internal/config"
	"github.com/zhouzirui/swiftcart-support/backend/internal/handler"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal("failed to initialize logger", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Infow("no .env file loaded, using process environment only", "reason", envErr)
	}

	k, err := knowledge.Resolve(cfg.Chat.KnowledgeFile)
	if err != nil {
		log.Fatal("failed to load knowledge", err)
	}

	chatService := chat.NewService()
	responder := newResponder(ctx, cfg, k)

	go sweepSessions(ctx, chatService, cfg.Chat.SessionTTL)

	router := handler.NewRouter(k.Profile, chatService, responder)
	startServer(ctx, cfg.Server, router)
}

// newResponder returns nil when the generator cannot be built. Question routes
// then answer 503 while the transcript routes keep working.
func newResponder(ctx context.Context, cfg *config.Config, k knowledge.Knowledge) *ai.Responder {
	generator, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			log.Warnw("generation disabled", "provider", cfg.AI.Provider, "reason", err)
		} else {
			log.Errorw("failed to initialize generator", "provider", cfg.AI.Provider, "error", err)
		}
		return nil
	}

	assembler := ai.NewAssembler(k, ai.AssemblerOptions{
		MaxTurns:    cfg.Chat.HistoryMaxTurns,
		MaxChars:    cfg.Chat.HistoryMaxChars,
		IncludeDate: cfg.Chat.IncludeDate,
	})
	log.Infow("generation enabled", "provider", cfg.AI.Provider)
	return ai.NewResponder(assembler, generator, ai.ResponderOptions{
		Provider: cfg.AI.Provider,
		Timeout:  cfg.Chat.RequestTimeout,
	})
}

func sweepSessions(ctx context.Context, svc *chat.Service, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := svc.SweepIdle(now.UTC(), ttl); removed > 0 {
				log.Infow("expired idle sessions", "removed", removed, "remaining", svc.Count())
			}
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infow("SwiftCart support backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatal("server error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
