package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lacasadark/casadark-core/internal/cache"
	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/project"
)

// Server serves the API on the loopback interface only.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

type ServerConfig struct {
	Port            int
	Projects        project.ProjectService
	Repository      project.Repository
	Runner          *project.Runner
	RenderCache     *cache.RenderCache
	Defaults        export.Settings
	RateLimitPerMin int
	Logger          *slog.Logger
	StartTime       time.Time
	Version         string
}

func NewServer(cfg ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("127.0.0.1", fmt.Sprint(cfg.Port)),
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Listen binds the configured address. Port 0 picks a free port, which Addr
// then reports.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Start serves until Shutdown, binding first if Listen was not called.
func (s *Server) Start() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		ln = s.listener
	}

	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
