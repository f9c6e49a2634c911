package services

import (
	"context"
	"fmt"
	"time"

	"weather-analytics/internal/config"
	"weather-analytics/internal/ingest"
	"weather-analytics/internal/models"
	"weather-analytics/internal/repository"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// HourlyProvider fetches hourly raw samples for a location.
type HourlyProvider interface {
	FetchHourly(ctx context.Context, latitude, longitude float64, hours int) ([]ingest.RawSample, error)
}

// IngestionService fetches provider samples, fills documented defaults, and
// stores the resulting observations. It also enforces retention.
type IngestionService struct {
	repo     repository.ObservationRepository
	provider HourlyProvider
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	cfg      config.IngestionConfig
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	Fetched  int
	Stored   int
	Deleted  int64
	Duration time.Duration
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	repo repository.ObservationRepository,
	provider HourlyProvider,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	cfg config.IngestionConfig,
) *IngestionService {
	return &IngestionService{
		repo:     repo,
		provider: provider,
		logger:   logger,
		metrics:  metricsCollector,
		cfg:      cfg,
	}
}

// RunOnce executes one fetch-convert-store cycle and applies retention.
func (s *IngestionService) RunOnce(ctx context.Context) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting observation ingestion", logging.Fields{
		"latitude":    s.cfg.Latitude,
		"longitude":   s.cfg.Longitude,
		"fetch_hours": s.cfg.FetchHours,
	})

	samples, err := s.provider.FetchHourly(ctx, s.cfg.Latitude, s.cfg.Longitude, s.cfg.FetchHours)
	if err != nil {
		s.metrics.RecordIngestionError("fetch_error")
		return nil, fmt.Errorf("failed to fetch samples: %w", err)
	}

	observations := make([]models.Observation, 0, len(samples))
	for i := range samples {
		observations = append(observations, samples[i].ToObservation())
	}

	if err := s.repo.SaveObservations(ctx, observations); err != nil {
		s.metrics.RecordIngestionError("store_error")
		return nil, fmt.Errorf("failed to store observations: %w", err)
	}

	result := &IngestionResult{
		Fetched: len(samples),
		Stored:  len(observations),
	}

	// Retention: drop observations past the configured horizon.
	if s.cfg.RetentionDays > 0 {
		cutoff := float64(time.Now().AddDate(0, 0, -s.cfg.RetentionDays).Unix())
		deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			s.metrics.RecordIngestionError("retention_error")
			s.logger.Error(ctx, "[INGEST_RETENTION_ERROR] Retention cleanup failed", logging.Fields{
				"cutoff": cutoff,
			}, err)
		} else {
			result.Deleted = deleted
		}
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Observation ingestion completed", logging.Fields{
		"fetched":          result.Fetched,
		"stored":           result.Stored,
		"deleted":          result.Deleted,
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}
