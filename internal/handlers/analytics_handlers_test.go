package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"weather-analytics/internal/models"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// One collector for the whole test binary; promauto registers globally.
var testCollector = metrics.NewCollector("handlers_test")

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("test", "0.0.0", logging.FatalLevel)
}

// stubAnalytics satisfies Analytics with canned results.
type stubAnalytics struct {
	observations []models.Observation
	summary      models.StatisticsSummary
	predictions  []models.Observation
	report       *models.PatternReport
	exported     []map[string]float64
	err          error
	healthErr    error

	lastWindowHours int
	lastHoursAhead  int
}

func (s *stubAnalytics) GetRecent(ctx context.Context, windowHours int) ([]models.Observation, error) {
	s.lastWindowHours = windowHours
	return s.observations, s.err
}

func (s *stubAnalytics) GetStatistics(ctx context.Context, windowHours int) (models.StatisticsSummary, error) {
	s.lastWindowHours = windowHours
	return s.summary, s.err
}

func (s *stubAnalytics) PredictTrend(ctx context.Context, windowHours, hoursAhead int) ([]models.Observation, error) {
	s.lastWindowHours = windowHours
	s.lastHoursAhead = hoursAhead
	return s.predictions, s.err
}

func (s *stubAnalytics) AnalyzePatterns(ctx context.Context, windowHours int) (*models.PatternReport, error) {
	s.lastWindowHours = windowHours
	return s.report, s.err
}

func (s *stubAnalytics) ExportRecent(ctx context.Context, windowHours int) ([]map[string]float64, error) {
	s.lastWindowHours = windowHours
	return s.exported, s.err
}

func (s *stubAnalytics) HealthCheck(ctx context.Context) error {
	return s.healthErr
}

func newTestRouter(stub *stubAnalytics) *mux.Router {
	handler := NewAnalyticsHandler(stub, testLogger(), testCollector, 24)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

// TestGetObservations checks the happy path and the default window.
func TestGetObservations(t *testing.T) {
	stub := &stubAnalytics{
		observations: []models.Observation{
			{Timestamp: 1000, Temperature: 18.5},
			{Timestamp: 4600, Temperature: 19.0},
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest("GET", "/api/weather", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.lastWindowHours != 24 {
		t.Errorf("window hours = %d, want default 24", stub.lastWindowHours)
	}

	var response WindowResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Count != 2 {
		t.Errorf("count = %d, want 2", response.Count)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

// TestGetObservationsWindowParam checks the hours query parameter is honored
// and out-of-range values fall back to the default.
func TestGetObservationsWindowParam(t *testing.T) {
	stub := &stubAnalytics{}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather?hours=48", nil))
	if stub.lastWindowHours != 48 {
		t.Errorf("window hours = %d, want 48", stub.lastWindowHours)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather?hours=9999", nil))
	if stub.lastWindowHours != 24 {
		t.Errorf("window hours = %d, want default 24 for out-of-range value", stub.lastWindowHours)
	}
}

// TestGetStatistics checks the summary body passes through unchanged.
func TestGetStatistics(t *testing.T) {
	stub := &stubAnalytics{
		summary: models.StatisticsSummary{
			TemperatureMean: 20.5,
			ComfortIndex:    91.0,
		},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summary models.StatisticsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.TemperatureMean != 20.5 || summary.ComfortIndex != 91.0 {
		t.Errorf("summary = %+v, want mean 20.5 comfort 91.0", summary)
	}
}

// TestGetStatisticsError checks service failures map to 500 with an error body.
func TestGetStatisticsError(t *testing.T) {
	stub := &stubAnalytics{err: errors.New("storage unavailable")}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather/stats", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if response.Code != http.StatusInternalServerError {
		t.Errorf("error code = %d, want 500", response.Code)
	}
}

// TestGetTrendPredictions checks hours_ahead parsing and validation.
func TestGetTrendPredictions(t *testing.T) {
	stub := &stubAnalytics{
		predictions: []models.Observation{{Timestamp: 3600}},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/predictions/trends?hours_ahead=12", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.lastHoursAhead != 12 {
		t.Errorf("hours_ahead = %d, want 12", stub.lastHoursAhead)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/predictions/trends?hours_ahead=500", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for hours_ahead above limit", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/predictions/trends?hours_ahead=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-numeric hours_ahead", rec.Code)
	}
}

// TestGetPatternAnalysisInsufficientData checks the typed condition maps to a
// 200 response with the explicit marker body.
func TestGetPatternAnalysisInsufficientData(t *testing.T) {
	stub := &stubAnalytics{
		err: &models.InsufficientDataError{Operation: "pattern_analysis", Required: 24, Got: 10},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis/patterns", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for insufficient data", rec.Code)
	}

	var response InsufficientDataResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.InsufficientData {
		t.Error("insufficient_data marker not set")
	}
	if response.Required != 24 || response.Got != 10 {
		t.Errorf("required/got = %d/%d, want 24/10", response.Required, response.Got)
	}
}

// TestGetPatternAnalysis checks a full report passes through.
func TestGetPatternAnalysis(t *testing.T) {
	stub := &stubAnalytics{
		report: &models.PatternReport{
			DailyMax:   27.5,
			DailyMin:   12.0,
			DailyRange: 15.5,
			ExtremeEvents: []models.ExtremeEvent{
				{Timestamp: 7200, Delta: 6.0, Type: models.EventSpike},
			},
			RainProbability: 4.17,
		},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis/patterns", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report models.PatternReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.DailyRange != 15.5 {
		t.Errorf("daily range = %v, want 15.5", report.DailyRange)
	}
	if len(report.ExtremeEvents) != 1 || report.ExtremeEvents[0].Type != models.EventSpike {
		t.Errorf("extreme events = %+v, want one spike", report.ExtremeEvents)
	}
}

// TestExportObservations checks the flat export body shape.
func TestExportObservations(t *testing.T) {
	stub := &stubAnalytics{
		exported: []map[string]float64{
			{"timestamp": 1000, "temperature": 18.5, "dew_point": 9.25},
		},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var response struct {
		WindowHours int                  `json:"window_hours"`
		Count       int                  `json:"count"`
		Data        []map[string]float64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Count != 1 {
		t.Fatalf("count = %d, want 1", response.Count)
	}
	if response.Data[0]["dew_point"] != 9.25 {
		t.Errorf("dew_point = %v, want 9.25", response.Data[0]["dew_point"])
	}
}

// TestHealthCheck covers both healthy and degraded storage.
func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	router = newTestRouter(&stubAnalytics{healthErr: errors.New("db down")})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when storage is down", rec.Code)
	}
}

// TestRequestIDPropagation checks a caller-supplied id is echoed back.
func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

// TestOpenAPISpec checks the docs endpoint serves valid JSON with the routes.
func TestOpenAPISpec(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/docs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var spec map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("failed to decode spec: %v", err)
	}

	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("spec missing paths")
	}
	for _, path := range []string{"/api/weather", "/api/weather/stats", "/api/predictions/trends", "/api/analysis/patterns", "/api/weather/export", "/health"} {
		if _, ok := paths[path]; !ok {
			t.Errorf("spec missing path %s", path)
		}
	}
}
