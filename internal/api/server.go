// Package api serves collapse runs and the closed-form black hole
// calculators over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/san-kum/collapse/internal/logging"
)

const Version = "1.0.0"

type Config struct {
	Addr string

	// Timeout bounds one simulate request or one stream.
	Timeout time.Duration

	// MaxWork caps steps*N for a single run.
	MaxWork int

	// StreamEvery is the snapshot interval when the client gives none.
	StreamEvery int

	// OriginPatterns are passed to the websocket handshake. Requests
	// without an Origin header are always accepted.
	OriginPatterns []string
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		Timeout:     60 * time.Second,
		MaxWork:     50_000_000,
		StreamEvery: 100,
	}
}

type Server struct {
	cfg        Config
	log        *slog.Logger
	handler    http.Handler
	httpServer *http.Server
}

func New(cfg Config, logger *slog.Logger) *Server {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxWork <= 0 {
		cfg.MaxWork = def.MaxWork
	}
	if cfg.StreamEvery <= 0 {
		cfg.StreamEvery = def.StreamEvery
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{cfg: cfg, log: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/physics/constants", s.handleConstants)
	mux.HandleFunc("POST /api/blackhole/calculate", s.handleBlackHole)
	mux.HandleFunc("POST /api/particles/spawn-rate", s.handleSpawnRate)
	mux.HandleFunc("POST /api/collapse/simulate", s.handleSimulate)
	mux.HandleFunc("POST /simulate_ccsn_bh", s.handleSimulate)
	mux.HandleFunc("GET /api/collapse/stream", s.handleStream)

	s.handler = s.withLogging(withCORS(mux))
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
