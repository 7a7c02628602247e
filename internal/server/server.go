// Package server exposes the resolver's HTTP and WebSocket API: workflow
// analysis/matching/planning, catalog search, and download-queue control.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/nodegraph/modelresolver/internal/core"
	"github.com/nodegraph/modelresolver/internal/download"
	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Addr           string   // listen address, e.g. ":8080"
	AllowedOrigins []string // CORS origins; ignored when AllowAll is set
	AllowAll       bool     // allow all CORS origins (dev mode)
}

// Server is the resolver's HTTP/WebSocket API, wired to a Core.
type Server struct {
	cfg        Config
	core       *core.Core
	router     chi.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a Server backed by c.
func New(cfg Config, c *core.Core) *Server {
	s := &Server{
		cfg:      cfg,
		core:     c,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/match", s.handleMatch)
		r.Post("/plan", s.handlePlan)
		r.Get("/search", s.handleSearch)

		r.Route("/downloads", func(r chi.Router) {
			r.Get("/", s.handleDownloadsList)
			r.Post("/", s.handleDownloadsEnqueue)
			r.Post("/{id}/pause", s.handleDownloadPause)
			r.Post("/{id}/resume", s.handleDownloadResume)
			r.Post("/{id}/cancel", s.handleDownloadCancel)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handleCacheStats)
			r.Delete("/{namespace}", s.handleCacheClear)
		})
	})

	r.Get("/ws/progress", s.handleProgressWS)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Core returns the Core this server was built from.
func (s *Server) Core() *core.Core { return s.core }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Printf("modelresolver server listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	refs, err := s.core.Analyze(raw, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.core.Inventory.Index(s.core.Config.Paths.ModelsRoot); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	refs, err := s.core.Analyze(raw, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, s.core.Match(refs))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.core.Inventory.Index(s.core.Config.Paths.ModelsRoot); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	plan, err := s.core.BuildPlan(r.Context(), raw, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("filename query parameter is required"))
		return
	}
	kind := registry.Kind(r.URL.Query().Get("kind"))

	ref := workflow.ArtifactRef{Filename: filename, Kind: kind}
	cand := s.core.Search(r.Context(), ref)
	writeJSON(w, http.StatusOK, cand)
}

func (s *Server) handleDownloadsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.Downloads.Status())
}

type enqueueRequest struct {
	Filename     string        `json:"filename"`
	Kind         registry.Kind `json:"kind"`
	SourceURL    string        `json:"source_url"`
	TargetPath   string        `json:"target_path"`
	ExpectedSize int64         `json:"expected_size"`
}

func (s *Server) handleDownloadsEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Filename == "" || req.SourceURL == "" || req.TargetPath == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("filename, source_url, and target_path are required"))
		return
	}

	task := download.Task{
		Filename:     req.Filename,
		Kind:         req.Kind,
		SourceURL:    req.SourceURL,
		TargetPath:   req.TargetPath,
		TempPath:     req.TargetPath + ".part",
		ExpectedSize: req.ExpectedSize,
	}
	id, err := s.core.Downloads.Enqueue(r.Context(), task)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (s *Server) handleDownloadPause(w http.ResponseWriter, r *http.Request) {
	if err := s.core.Downloads.Pause(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	if err := s.core.Downloads.Resume(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownloadCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.core.Downloads.Cancel(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.core.Cache.StatsByNamespace()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.core.Cache.Clear(chi.URLParam(r, "namespace")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProgressWS streams every download progress event to the client as
// JSON until the connection closes.
func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for ev := range s.core.Downloads.Progress() {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func readBody(r *http.Request) ([]byte, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	return raw, nil
}
