package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/config"
)

// Triggers maps the manual run endpoints onto their pipelines.
type Triggers struct {
	Draft     func(context.Context) error
	TitleGate func(context.Context) error
	Publish   func(context.Context) error
}

// Server hosts the webhook and trigger endpoints.
type Server struct {
	httpServer *http.Server
	limiter    *rateLimiter
	logger     *slog.Logger
}

// New assembles the routing table. The Slack interactivity endpoint is rate
// limited per client IP; run triggers sit behind the bearer token.
func New(cfg config.ServerConfig, handler *Handler, triggers Triggers, logger *slog.Logger) *Server {
	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /resume", limiter.middleware(http.HandlerFunc(handler.Resume)))
	mux.Handle("POST /run/daily", bearerAuth(cfg.AuthToken, handler.RunTrigger("draft", triggers.Draft)))
	mux.Handle("POST /run/titlegate", bearerAuth(cfg.AuthToken, handler.RunTrigger("titlegate", triggers.TitleGate)))
	mux.Handle("POST /run/publish", bearerAuth(cfg.AuthToken, handler.RunTrigger("publish", triggers.Publish)))
	mux.HandleFunc("GET /health", handler.Health)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
