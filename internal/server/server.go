// Package server wires the swap services into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"slotswap-backend/config"
	"slotswap-backend/internal/api"
	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/catalog"
	"slotswap-backend/internal/ledger"
	"slotswap-backend/internal/notification"
	"slotswap-backend/internal/realtime"
	"slotswap-backend/internal/store"
	"slotswap-backend/internal/users"
)

type Server struct {
	cfg      *config.Config
	registry *realtime.Registry
	http     *http.Server
	logger   *zap.Logger
}

// New builds every component on top of an initialized database.
func New(cfg *config.Config, gormDB *gorm.DB, logger *zap.Logger) *Server {
	appStore := store.NewGormStore(gormDB)
	registry := realtime.NewRegistry(logger.Named("realtime"))
	notifications := notification.NewService(appStore, registry, logger.Named("notification"))

	handler := api.NewHandler(api.Services{
		Store:         appStore,
		Ledger:        ledger.New(appStore, notifications, logger.Named("ledger")),
		Notifications: notifications,
		Catalog:       catalog.New(appStore, logger.Named("catalog")),
		Registry:      registry,
	}, cfg.Realtime, logger.Named("api"))

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	directory := users.NewDirectory(appStore, logger.Named("users"))
	router := api.NewRouter(handler, tokens, directory, cfg.RateLimit, logger.Named("http"))

	return &Server{
		cfg:      cfg,
		registry: registry,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		},
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
// Open event streams are closed first; they would otherwise hold the
// shutdown until its deadline.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received, stopping services...")
	s.registry.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("Server gracefully stopped")
	return nil
}

// ListenAndRun listens on the configured port and calls Run.
func (s *Server) ListenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Run(ctx, ln)
}
