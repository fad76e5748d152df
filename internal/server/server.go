package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"relaybot/internal/config"
	"relaybot/internal/domain"
	"relaybot/internal/metrics"
	"relaybot/internal/relay"
)

// Server is the HTTP surface of the relay: the gateway webhook plus the
// health, config and manual-test endpoints.
type Server struct {
	cfg        *config.Config
	controller *relay.Controller
	completer  domain.Completer
	sender     domain.Sender
	collector  *metrics.Collector
	logger     *slog.Logger
	router     chi.Router
	received   *metrics.Counter
	httpServer *http.Server
}

type Config struct {
	Config     *config.Config
	Controller *relay.Controller
	Completer  domain.Completer
	Sender     domain.Sender
	Collector  *metrics.Collector
	Logger     *slog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:        cfg.Config,
		controller: cfg.Controller,
		completer:  cfg.Completer,
		sender:     cfg.Sender,
		collector:  cfg.Collector,
		logger:     cfg.Logger,
		received: cfg.Collector.Counter("relaybot_webhook_received_total",
			"Webhook calls received"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", s.handleWebhook)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/config", s.handleConfig)
	r.Post("/test-claude", s.handleTestClaude)
	r.Get("/test-query", s.handleTestQuery)
	r.Post("/test-whatsapp", s.handleTestWhatsApp)
	r.Get("/metrics", s.collector.Handler())

	s.router = r
	return s
}

// Handler exposes the router (used by tests).
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("relay server starting",
		"port", s.cfg.Server.Port,
		"gateway", s.cfg.Evolution.BaseURL,
		"instance", s.cfg.Evolution.Instance,
		"claude_configured", s.cfg.HasClaudeKey(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("relay server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("relay server: %w", err)
	}
}
