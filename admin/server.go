package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonwraymond/ensemblops/observe"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Addr to listen on. Default: 127.0.0.1:8089
	Addr string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration

	// Logger receives admin.listening and admin.stopped. Default: no-op
	Logger observe.Logger
}

// Server runs the admin router until its context ends.
type Server struct {
	config ServerConfig
	http   *http.Server
}

// NewServer creates a Server for handler.
func NewServer(handler http.Handler, config ServerConfig) *Server {
	// Apply defaults
	if config.Addr == "" {
		config.Addr = "127.0.0.1:8089"
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &Server{
		config: config,
		http: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("admin: listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.config.Logger.Info(ctx, "admin.listening", observe.F("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	shutdownErr := s.http.Shutdown(shutdownCtx)
	serveErr := <-errCh
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}
	s.config.Logger.Info(shutdownCtx, "admin.stopped")
	return errors.Join(shutdownErr, serveErr)
}
