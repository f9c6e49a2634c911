package services

import (
	"context"
	"fmt"
	"time"

	"weather-analytics/internal/engine"
	"weather-analytics/internal/models"
	"weather-analytics/internal/repository"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// AnalyticsService loads observation windows from storage and runs the
// analytics engine over them. Computed summaries are persisted as a side
// effect and recent results are served from a bounded cache.
type AnalyticsService struct {
	repo    repository.ObservationRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	tuning  engine.Tuning
	cache   *resultCache
}

// NewAnalyticsService creates a new analytics service. cacheSize bounds the
// number of cached engine results; zero disables caching.
func NewAnalyticsService(
	repo repository.ObservationRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	tuning engine.Tuning,
	cacheSize int,
) *AnalyticsService {
	return &AnalyticsService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		tuning:  tuning,
		cache:   newResultCache(cacheSize),
	}
}

// GetRecent returns the trailing observation window, oldest first.
func (s *AnalyticsService) GetRecent(ctx context.Context, windowHours int) ([]models.Observation, error) {
	return s.repo.GetRecent(ctx, windowHours)
}

// GetStatistics computes the statistics summary over the trailing window.
// Empty windows yield a zero-valued summary; when a previously stored
// summary exists it is returned instead of the empty one.
func (s *AnalyticsService) GetStatistics(ctx context.Context, windowHours int) (models.StatisticsSummary, error) {
	records, err := s.repo.GetRecent(ctx, windowHours)
	if err != nil {
		return models.StatisticsSummary{}, fmt.Errorf("failed to load window: %w", err)
	}

	if len(records) == 0 {
		stored, err := s.repo.GetLatestSummary(ctx)
		if err != nil {
			return models.StatisticsSummary{}, fmt.Errorf("failed to load stored summary: %w", err)
		}
		if stored != nil {
			s.logger.Debug(ctx, "[STATS_FALLBACK] Serving last stored summary for empty window", logging.Fields{
				"window_hours": windowHours,
			})
			return *stored, nil
		}
		return models.StatisticsSummary{}, nil
	}

	key := windowKey("statistics", records)
	if cached, ok := s.cache.get(key); ok {
		s.metrics.RecordCacheHit()
		return cached.(models.StatisticsSummary), nil
	}
	s.metrics.RecordCacheMiss()

	start := time.Now()
	summary := engine.ComputeStatisticsWith(records, s.tuning)
	s.metrics.RecordEngineCompute("statistics", len(records), time.Since(start))

	s.cache.put(key, summary)

	// Persisting the summary is best effort; the computed value is already
	// in hand for the caller.
	windowStart := records[0].Timestamp
	windowEnd := records[len(records)-1].Timestamp
	if err := s.repo.SaveSummary(ctx, windowStart, windowEnd, summary); err != nil {
		s.logger.Warn(ctx, "[STATS_PERSIST_WARN] Failed to persist summary", logging.Fields{
			"window_start": windowStart,
			"window_end":   windowEnd,
			"error":        err.Error(),
		})
	}

	s.logger.Info(ctx, "[STATS_COMPUTE] Statistics computed", logging.Fields{
		"window_hours":  windowHours,
		"record_count":  len(records),
		"comfort_index": summary.ComfortIndex,
		"severity":      summary.WeatherSeverity,
	})

	return summary, nil
}

// PredictTrend extrapolates hoursAhead synthetic observations from the
// trailing window. Windows with fewer than ten records yield an empty
// sequence.
func (s *AnalyticsService) PredictTrend(ctx context.Context, windowHours, hoursAhead int) ([]models.Observation, error) {
	records, err := s.repo.GetRecent(ctx, windowHours)
	if err != nil {
		return nil, fmt.Errorf("failed to load window: %w", err)
	}

	key := windowKey(fmt.Sprintf("trend:%d", hoursAhead), records)
	if cached, ok := s.cache.get(key); ok {
		s.metrics.RecordCacheHit()
		return cached.([]models.Observation), nil
	}
	s.metrics.RecordCacheMiss()

	start := time.Now()
	predictions := engine.PredictTrend(records, hoursAhead)
	s.metrics.RecordEngineCompute("trend", len(records), time.Since(start))

	s.cache.put(key, predictions)

	s.logger.Info(ctx, "[TREND_PREDICT] Trend predictions generated", logging.Fields{
		"window_hours": windowHours,
		"record_count": len(records),
		"hours_ahead":  hoursAhead,
		"predictions":  len(predictions),
	})

	return predictions, nil
}

// AnalyzePatterns scans the trailing window for extremes and precipitation
// patterns. Windows with fewer than 24 records return the typed
// insufficient-data error for callers to branch on.
func (s *AnalyticsService) AnalyzePatterns(ctx context.Context, windowHours int) (*models.PatternReport, error) {
	records, err := s.repo.GetRecent(ctx, windowHours)
	if err != nil {
		return nil, fmt.Errorf("failed to load window: %w", err)
	}

	key := windowKey("patterns", records)
	if cached, ok := s.cache.get(key); ok {
		s.metrics.RecordCacheHit()
		return cached.(*models.PatternReport), nil
	}
	s.metrics.RecordCacheMiss()

	start := time.Now()
	report, err := engine.AnalyzePatterns(records)
	s.metrics.RecordEngineCompute("patterns", len(records), time.Since(start))
	if err != nil {
		return nil, err
	}

	s.cache.put(key, report)

	s.logger.Info(ctx, "[PATTERN_ANALYZE] Pattern analysis completed", logging.Fields{
		"window_hours":   windowHours,
		"record_count":   len(records),
		"extreme_events": len(report.ExtremeEvents),
		"rainy_hours":    report.RainyHours,
	})

	return report, nil
}

// ExportRecent flattens the trailing window into generic key/value records
// for the serialization boundary.
func (s *AnalyticsService) ExportRecent(ctx context.Context, windowHours int) ([]map[string]float64, error) {
	records, err := s.repo.GetRecent(ctx, windowHours)
	if err != nil {
		return nil, fmt.Errorf("failed to load window: %w", err)
	}

	start := time.Now()
	exported := engine.Export(records)
	s.metrics.RecordEngineCompute("export", len(records), time.Since(start))

	return exported, nil
}

// HealthCheck reports storage availability.
func (s *AnalyticsService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
