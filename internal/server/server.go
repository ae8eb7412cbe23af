package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/pipeline"
	"github.com/healthlens/healthlens/internal/prompt"
)

// Analyzer is the pipeline capability the HTTP layer depends on.
type Analyzer interface {
	Process(ctx context.Context, doc document.Document, patient *prompt.PatientContext) (pipeline.Result, error)
}

// Server is the thin transport layer: multipart in, JSON out. All decision
// logic lives in the pipeline.
type Server struct {
	router         chi.Router
	analyzer       Analyzer
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(analyzer Analyzer, maxUploadBytes int64, logger *slog.Logger) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps the pipeline error taxonomy onto HTTP statuses: caller
// errors 400, summary-service failures 502 (retryable), timeouts 504.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrUnsupportedMediaType):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "UNSUPPORTED_MEDIA_TYPE"})
	case errors.Is(err, common.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "INVALID_INPUT"})
	case errors.Is(err, common.ErrSummaryService):
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "SUMMARY_SERVICE_FAILURE"})
	case errors.Is(err, context.DeadlineExceeded):
		s.writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request timed out", Code: "TIMEOUT"})
	default:
		s.logger.Error("analyze failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"})
	}
}
