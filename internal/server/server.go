// Package server exposes the dashboard over HTTP: the HTML pages, a JSON API,
// health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/KaramelBytes/depdash-cli/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Options configures the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// TableLimit caps the rows of the HTML data table; the JSON API pages instead.
	TableLimit int
	Render     dashboard.Options
}

// Server serves one prepared dataset. It holds no per-user state.
type Server struct {
	data     *dataset.Dataset
	log      logrus.FieldLogger
	opt      Options
	page     *template.Template
	validate *validator.Validate
}

// New builds a server for d. The dataset must come from dataset.Load or dataset.Prepare.
func New(d *dataset.Dataset, log logrus.FieldLogger, opt Options) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	observability.RecordDataset(d.Len(), len(d.Unmapped()))
	return &Server{
		data:     d,
		log:      log.WithField("component", "server"),
		opt:      opt,
		page:     tmpl,
		validate: validator.New(),
	}, nil
}

// Router returns the HTTP handler with every route and middleware mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	// RequestID → RealIP → Logger → Recoverer
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(Recoverer(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/pages", s.handlePages)
		r.Get("/genders", s.handleGenders)
		r.Get("/view", s.handleView)
		r.Get("/records", s.handleRecords)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found", r.URL.Path))
	})
	return r
}

// Run listens on opt.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opt.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       s.opt.ReadTimeout,
		WriteTimeout:      s.opt.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("dashboard listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.opt.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
