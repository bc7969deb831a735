package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stringlab/internal/models"
	"github.com/stringlab/internal/service"
	"github.com/stringlab/internal/storage"
	"github.com/stringlab/pkg/logger"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
	// maxBodyBytes bounds request bodies; analyze carries the whole string
	maxBodyBytes = 8 << 20
)

// Handler holds all HTTP handlers
type Handler struct {
	analysis *service.AnalysisService
	logger   *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(analysis *service.AnalysisService, logger *logger.Logger) *Handler {
	return &Handler{
		analysis: analysis,
		logger:   logger,
	}
}

// Routes sets up all routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/analyze", h.Analyze)
		r.Get("/test", h.Test)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)
	})

	return r
}

// Health handles health check requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Test handles the connectivity check used by clients
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.StatusResponse{
		Status:    "ok",
		Message:   "API is working",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}

// Generate handles POST /api/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondDecodeError(w, err)
		return
	}

	requestID := GetRequestID(r.Context())
	h.logger.Debug("Generating string", logger.F("pattern", req.Pattern), logger.F("request_id", requestID))

	resp, err := h.analysis.Generate(r.Context(), req.N, req.Pattern)
	if err != nil {
		h.handleServiceError(w, r, "Failed to generate string", err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Analyze handles POST /api/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondDecodeError(w, err)
		return
	}

	requestID := GetRequestID(r.Context())
	h.logger.Debug("Analyzing string",
		logger.F("algorithm", req.Algorithm),
		logger.F("pattern", req.Pattern),
		logger.F("direction", req.Direction),
		logger.F("request_id", requestID))

	resp, err := h.analysis.Analyze(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, "Failed to analyze string", err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ListRuns handles GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.analysis.ListRuns(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, r, "Failed to list runs", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.RunsResponse{Runs: runs, Count: len(runs)})
}

// GetRun handles GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.analysis.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, "Failed to get run", err)
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondDecodeError reports an unreadable body, 413 when it exceeds maxBodyBytes
func (h *Handler) respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	h.respondError(w, http.StatusBadRequest, "invalid request body")
}

// handleServiceError maps service errors to status codes
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	requestID := GetRequestID(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.logger.Debug(msg, logger.F("error", verr.Message), logger.F("request_id", requestID))
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:                verr.Message,
			MaxRecommendedLength: verr.MaxRecommendedLength,
		})
	case errors.Is(err, storage.ErrRunNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(msg, logger.F("error", err.Error()), logger.F("request_id", requestID))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", logger.F("error", err.Error()))
	}
}

// respondError sends an error response
func (h *Handler) respondError(w http.ResponseWriter, status int, errorMsg string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: errorMsg})
}
