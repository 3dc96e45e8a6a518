package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/countdown-go/countdown/cmd/countdown-web/api"
	"github.com/countdown-go/countdown/internal/app"
)

//go:embed static/*
var staticFiles embed.FS

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr    string
	Version string

	// App configures the countdown served by the server.
	App app.Options
}

// Server is the HTTP server for the countdown web frontend.
type Server struct {
	config       ServerConfig
	mux          *http.ServeMux
	server       *http.Server
	app          *app.App
	countdownAPI *api.CountdownAPI
}

// NewServer creates a new server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	a, err := app.New(cfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize countdown: %w", err)
	}

	s := &Server{
		config:       cfg,
		mux:          http.NewServeMux(),
		app:          a,
		countdownAPI: api.NewCountdownAPI(a),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.mux,
	}

	return s, nil
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// API routes
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/info", s.handleInfo)

	// Countdown routes
	s.mux.HandleFunc("/api/v1/status", s.countdownAPI.HandleStatus)
	s.mux.HandleFunc("/api/v1/value", s.countdownAPI.HandleValue)
	s.mux.HandleFunc("/api/v1/stream", s.countdownAPI.HandleStream)

	// Run routes
	s.mux.HandleFunc("/api/v1/runs", s.countdownAPI.HandleRuns)
	s.mux.HandleFunc("/api/v1/runs/", s.countdownAPI.HandleRunByID)

	s.mux.Handle("/metrics", s.app.MetricsHandler())

	// Static files
	s.mux.HandleFunc("/", s.handleStatic)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}

	resp := map[string]string{
		"status":  "ok",
		"version": version,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleInfo returns server information.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runCount := 0
	if s.app.History != nil {
		runCount, _ = s.app.History.Count()
	}

	resp := map[string]int{
		"active_runs": s.app.Countdown.Active(),
		"run_count":   runCount,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleStatic serves the embedded UI.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filePath := strings.TrimPrefix(path, "/")
	content, err := fs.ReadFile(staticFS, filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(filePath, ".html"):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case strings.HasSuffix(filePath, ".css"):
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	case strings.HasSuffix(filePath, ".js"):
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	}

	w.Write(content)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	return app.Serve(ctx, s.server)
}

// Close stops all runs and releases the countdown's resources.
func (s *Server) Close() error {
	return s.app.Close()
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
