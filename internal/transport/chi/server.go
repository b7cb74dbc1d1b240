// Package chi exposes the question-answering pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
	chatuc "github.com/origenlabs/origen/internal/usecase/chat"
	healthuc "github.com/origenlabs/origen/internal/usecase/health"
	memoryuc "github.com/origenlabs/origen/internal/usecase/memory"
)

// Error response codes.
const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeUpstreamError = "upstream_error"
	codeInternalError = "internal_error"
)

const maxQuestionBytes = 8 << 10

// Server routes HTTP requests to the use case services.
type Server struct {
	chat   *chatuc.Service
	memory *memoryuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(chat *chatuc.Service, memory *memoryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{chat: chat, memory: memory, health: health, logger: logger}
}

// Mount registers all routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", s.Ask)
		r.Post("/documents/reload", s.ReloadDocuments)
		r.Get("/memory/stats", s.MemoryStats)
		r.Delete("/memory", s.ClearMemory)
		r.Get("/status", s.Status)
	})
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// Ask handles POST /api/v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Mint a session so the client can keep the conversation going.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	answer, err := s.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer, SessionID: req.SessionID})
}

// ReloadDocuments handles POST /api/v1/documents/reload.
func (s *Server) ReloadDocuments(w http.ResponseWriter, r *http.Request) {
	count, err := s.chat.ReloadDocuments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"documents_loaded": count})
}

// MemoryStats handles GET /api/v1/memory/stats.
func (s *Server) MemoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memory.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ClearMemory handles DELETE /api/v1/memory.
func (s *Server) ClearMemory(w http.ResponseWriter, r *http.Request) {
	if err := s.memory.Clear(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	chatuc.Status
	Memory memoryuc.Stats `json:"memory"`
}

// Status handles GET /api/v1/status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memory.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: s.chat.ServiceStatus(), Memory: stats})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrIndexUnavailable,
		domain.ErrEmbeddingFailure,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	switch {
	case errors.Is(err, domain.ErrEmbeddingProviderError),
		errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, domain.ErrEmbeddingFailure),
		errors.Is(err, domain.ErrIndexUnavailable):
		s.logger.Warn("Upstream provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, codeUpstreamError, msg)
	default:
		s.logger.Error("Internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
