package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"weather-analytics/internal/models"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// Analytics is the slice of the analytics service the HTTP layer needs.
type Analytics interface {
	GetRecent(ctx context.Context, windowHours int) ([]models.Observation, error)
	GetStatistics(ctx context.Context, windowHours int) (models.StatisticsSummary, error)
	PredictTrend(ctx context.Context, windowHours, hoursAhead int) ([]models.Observation, error)
	AnalyzePatterns(ctx context.Context, windowHours int) (*models.PatternReport, error)
	ExportRecent(ctx context.Context, windowHours int) ([]map[string]float64, error)
	HealthCheck(ctx context.Context) error
}

// Window bounds for the hours and hours_ahead query parameters.
const (
	maxWindowHours  = 168
	defaultForecast = 24
	maxForecast     = 72
)

// AnalyticsHandler handles analytics API endpoints
type AnalyticsHandler struct {
	analytics     Analytics
	logger        *logging.StructuredLogger
	metrics       *metrics.Collector
	defaultWindow int
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	analytics Analytics,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	defaultWindowHours int,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics:     analytics,
		logger:        logger,
		metrics:       metricsCollector,
		defaultWindow: defaultWindowHours,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WindowResponse wraps a result with the window it was computed over.
type WindowResponse struct {
	WindowHours int         `json:"window_hours"`
	Count       int         `json:"count"`
	Data        interface{} `json:"data"`
}

// InsufficientDataResponse is the explicit marker body for windows below an
// operation's minimum.
type InsufficientDataResponse struct {
	InsufficientData bool   `json:"insufficient_data"`
	Operation        string `json:"operation"`
	Required         int    `json:"required"`
	Got              int    `json:"got"`
}

// GetObservations handles GET /api/weather
func (h *AnalyticsHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeDuration("/api/weather")()

	hours := h.parseWindowHours(r)

	observations, err := h.analytics.GetRecent(ctx, hours)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_OBSERVATIONS_ERROR] Failed to get observations", logging.Fields{
			"hours": hours,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather")
		h.sendError(w, r, "failed to retrieve observations", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather", "GET", "200")
	h.sendJSON(w, WindowResponse{
		WindowHours: hours,
		Count:       len(observations),
		Data:        observations,
	}, http.StatusOK)
}

// GetStatistics handles GET /api/weather/stats
func (h *AnalyticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeDuration("/api/weather/stats")()

	hours := h.parseWindowHours(r)

	summary, err := h.analytics.GetStatistics(ctx, hours)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_STATISTICS_ERROR] Failed to compute statistics", logging.Fields{
			"hours": hours,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/stats")
		h.sendError(w, r, "failed to compute statistics", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather/stats", "GET", "200")
	h.sendJSON(w, summary, http.StatusOK)
}

// GetTrendPredictions handles GET /api/predictions/trends
func (h *AnalyticsHandler) GetTrendPredictions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeDuration("/api/predictions/trends")()

	hours := h.parseWindowHours(r)

	hoursAhead := defaultForecast
	if raw := r.URL.Query().Get("hours_ahead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxForecast {
			h.sendError(w, r, "invalid hours_ahead, expected integer between 1 and 72", http.StatusBadRequest)
			return
		}
		hoursAhead = n
	}

	predictions, err := h.analytics.PredictTrend(ctx, hours, hoursAhead)
	if err != nil {
		h.logger.Error(ctx, "[API_PREDICT_ERROR] Failed to predict trend", logging.Fields{
			"hours":       hours,
			"hours_ahead": hoursAhead,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/predictions/trends")
		h.sendError(w, r, "failed to predict trend", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/predictions/trends", "GET", "200")
	h.sendJSON(w, WindowResponse{
		WindowHours: hours,
		Count:       len(predictions),
		Data:        predictions,
	}, http.StatusOK)
}

// GetPatternAnalysis handles GET /api/analysis/patterns
func (h *AnalyticsHandler) GetPatternAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeDuration("/api/analysis/patterns")()

	hours := h.parseWindowHours(r)

	report, err := h.analytics.AnalyzePatterns(ctx, hours)
	if err != nil {
		var insufficientErr *models.InsufficientDataError
		if errors.As(err, &insufficientErr) {
			h.metrics.RecordAPIRequest("/api/analysis/patterns", "GET", "200")
			h.sendJSON(w, InsufficientDataResponse{
				InsufficientData: true,
				Operation:        insufficientErr.Operation,
				Required:         insufficientErr.Required,
				Got:              insufficientErr.Got,
			}, http.StatusOK)
			return
		}

		h.logger.Error(ctx, "[API_PATTERNS_ERROR] Failed to analyze patterns", logging.Fields{
			"hours": hours,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/analysis/patterns")
		h.sendError(w, r, "failed to analyze patterns", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/analysis/patterns", "GET", "200")
	h.sendJSON(w, report, http.StatusOK)
}

// ExportObservations handles GET /api/weather/export
func (h *AnalyticsHandler) ExportObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeDuration("/api/weather/export")()

	hours := h.parseWindowHours(r)

	exported, err := h.analytics.ExportRecent(ctx, hours)
	if err != nil {
		h.logger.Error(ctx, "[API_EXPORT_ERROR] Failed to export observations", logging.Fields{
			"hours": hours,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/export")
		h.sendError(w, r, "failed to export observations", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather/export", "GET", "200")
	h.sendJSON(w, WindowResponse{
		WindowHours: hours,
		Count:       len(exported),
		Data:        exported,
	}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.analytics.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Storage unavailable", logging.Fields{}, err)
		status["status"] = "degraded"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// parseWindowHours reads the hours query parameter, falling back to the
// configured default and clamping into [1, maxWindowHours].
func (h *AnalyticsHandler) parseWindowHours(r *http.Request) int {
	hours := h.defaultWindow
	if raw := r.URL.Query().Get("hours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxWindowHours {
			hours = n
		}
	}
	return hours
}

// observeDuration times a handler invocation for the endpoint histogram.
func (h *AnalyticsHandler) observeDuration(endpoint string) func() {
	start := time.Now()
	return func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// sendJSON sends a JSON response
func (h *AnalyticsHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AnalyticsHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RequestIDMiddleware assigns each request a correlation id, exposed on the
// response and carried in the context for logging.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RegisterRoutes registers all analytics API routes
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestIDMiddleware)

	router.HandleFunc("/api/weather", h.GetObservations).Methods("GET")
	router.HandleFunc("/api/weather/stats", h.GetStatistics).Methods("GET")
	router.HandleFunc("/api/weather/export", h.ExportObservations).Methods("GET")
	router.HandleFunc("/api/predictions/trends", h.GetTrendPredictions).Methods("GET")
	router.HandleFunc("/api/analysis/patterns", h.GetPatternAnalysis).Methods("GET")
	router.HandleFunc("/api/docs", OpenAPISpec).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
