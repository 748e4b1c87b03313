// Package httpapi exposes the funnel controller over HTTP for a local front
// end. Every response body is JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server routes HTTP requests to a single funnel.
type Server struct {
	cfg    Config
	funnel *funnel.Funnel
	logger *slog.Logger
	router *chi.Mux
}

// New builds the router for f.
func New(f *funnel.Funnel, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{cfg: cfg, funnel: f, logger: logger, router: r}
	s.RegisterHTTP(r)
	return s
}

// RegisterHTTP mounts the funnel routes on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Route("/funnel", func(r chi.Router) {
		r.Get("/", s.handleResume)
		r.Get("/state", s.handleState)
		r.Get("/link", s.handleLink)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/submit", s.handleSubmit)
			r.Post("/field", s.handleField)
			r.Post("/back", s.handleBack)
			r.Post("/restart", s.handleRestart)
			r.Post("/reset", s.handleReset)
			r.Post("/goto", s.handleGoto)
			r.Post("/download", s.handleDownload)
			r.Post("/exit", s.handleExit)
		})
	})
	r.Get("/consent", s.handleConsent)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("http server stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
