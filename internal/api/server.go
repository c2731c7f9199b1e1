// Package api implements the HTTP boundary for the enhancement pipeline.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"promptsmith/internal/buildinfo"
	"promptsmith/internal/engineer"
	"promptsmith/internal/history"
	"promptsmith/internal/llm"
)

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP API server.
type Server struct {
	address  string
	port     int
	engineer *engineer.Engineer
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a new API server.
func NewServer(address string, port int, eng *engineer.Engineer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		address:  address,
		port:     port,
		engineer: eng,
		logger:   logger,
	}
}

// Handler builds the route mux. Exposed separately from Start so tests
// can drive it without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/process", s.handleProcess)
	mux.HandleFunc("POST /v1/feedback", s.handleFeedback)
	mux.HandleFunc("GET /v1/history", s.handleHistory)

	mux.HandleFunc("GET /v1/version", s.handleVersion)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /", s.handleRoot)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Provider calls can be slow
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting API server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

type processRequest struct {
	Prompt            string `json:"prompt"`
	Provider          string `json:"provider"`
	BypassEnhancement bool   `json:"bypass_enhancement"`
}

type processResponse struct {
	RecordID       int64  `json:"record_id"`
	PromptType     string `json:"prompt_type"`
	EnhancedPrompt string `json:"enhanced_prompt"`
	Response       string `json:"response"`
	Enhanced       bool   `json:"enhanced"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, errorResponse{Error: msg}, s.logger)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Provider == "" {
		req.Provider = llm.ProviderOpenAI
	}

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)
	logger.Debug("processing prompt", "provider", req.Provider, "bypass", req.BypassEnhancement)

	result, err := s.engineer.Process(r.Context(), engineer.Request{
		Prompt:            req.Prompt,
		Provider:          req.Provider,
		BypassEnhancement: req.BypassEnhancement,
	})
	if err != nil {
		var provErr *llm.ProviderError
		if errors.As(err, &provErr) {
			logger.Error("dispatch failed", "provider", provErr.Provider, "error", provErr.Err)
			s.writeError(w, http.StatusBadGateway, provErr.Error())
			return
		}
		logger.Error("processing failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, processResponse{
		RecordID:       result.RecordID,
		PromptType:     result.PromptType,
		EnhancedPrompt: result.EnhancedPrompt,
		Response:       result.Response,
		Enhanced:       result.Enhanced,
	}, s.logger)
}

type feedbackRequest struct {
	RecordID int64 `json:"record_id"`
	Rating   int   `json:"rating"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.engineer.Rate(r.Context(), req.RecordID, req.Rating)
	switch {
	case errors.Is(err, history.ErrInvalidRating):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, history.ErrRecordNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.engineer.History(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"records": records}, s.logger)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":    "promptsmith",
		"version": buildinfo.Version,
		"status":  "ok",
	}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, buildinfo.Info(), s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}
