package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
	"github.com/sabucaps/brazilian/pkg/api/progress/v1/progressv1connect"
)

// Server represents the application server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer mounts the progress service behind CORS and h2c so that browsers,
// connect clients and plaintext gRPC clients share one port.
func NewServer(cfg *config.Config, logger *logrus.Logger, progressSvc progressv1connect.ProgressServiceHandler) *Server {
	mux := http.NewServeMux()
	mux.Handle(progressv1connect.NewProgressServiceHandler(progressSvc,
		connect.WithInterceptors(Logger(logger)),
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           h2c.NewHandler(withCORS(cfg.Server.CORSOrigins, mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     logger,
	}
}

func withCORS(origins []string, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: append(connectcors.AllowedHeaders(), requestIDHeader),
		ExposedHeaders: append(connectcors.ExposedHeaders(), requestIDHeader),
		MaxAge:         7200,
	}).Handler(h)
}

// Handler exposes the full handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
