// Package server exposes the publishing controls over a local HTTP API, so
// a UI or curl can drive the same operations as the CLI.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"quizcast/internal/automation"
	"quizcast/internal/settings"
)

// Authorizer is the slice of the authorization flow the API needs.
type Authorizer interface {
	Begin() error
	Disconnect() error
}

type Server struct {
	store      settings.Store
	flow       Authorizer
	controller *automation.Controller
	defaults   automation.Config
	count      int

	server *http.Server
}

type Options struct {
	Addr       string
	Store      settings.Store
	Flow       Authorizer
	Controller *automation.Controller

	// Defaults fill in fields a start request leaves empty.
	Defaults     automation.Config
	DefaultCount int
}

func New(opts Options) *Server {
	count := opts.DefaultCount
	if count < 1 {
		count = 1
	}

	s := &Server{
		store:      opts.Store,
		flow:       opts.Flow,
		controller: opts.Controller,
		defaults:   opts.Defaults,
		count:      count,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      logRequests(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/auth/connect", s.handleConnect)
	mux.HandleFunc("/api/auth/disconnect", s.handleDisconnect)
	mux.HandleFunc("/api/automation/start", s.handleStart)
	mux.HandleFunc("/api/automation/stop", s.handleStop)
	mux.HandleFunc("/api/automation/status", s.handleStatus)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	slog.Info("Starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request handled", "method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start))
	})
}
