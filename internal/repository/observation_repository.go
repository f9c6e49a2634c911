package repository

import (
	"context"
	"fmt"
	"time"

	"weather-analytics/internal/models"
	"weather-analytics/pkg/database"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// ObservationRepository provides data access for observations and computed
// summaries. The analytics engine itself never touches storage; services
// load windows through this interface and hand them to the engine.
type ObservationRepository interface {
	// Observation operations
	SaveObservations(ctx context.Context, observations []models.Observation) error
	GetRecent(ctx context.Context, hours int) ([]models.Observation, error)
	GetRange(ctx context.Context, from, to float64) ([]models.Observation, error)
	DeleteOlderThan(ctx context.Context, cutoff float64) (int64, error)

	// Summary operations
	SaveSummary(ctx context.Context, windowStart, windowEnd float64, summary models.StatisticsSummary) error
	GetLatestSummary(ctx context.Context) (*models.StatisticsSummary, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// observationRepository implements ObservationRepository
type observationRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ObservationRepository {
	return &observationRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SaveObservations inserts a batch of observations in a single transaction,
// upserting on timestamp.
func (r *observationRepository) SaveObservations(ctx context.Context, observations []models.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(observations),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (
			ts, temperature, humidity, pressure,
			wind_speed, wind_direction, rainfall, cloudiness,
			visibility, uv_index, feels_like, dew_point
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ts) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			humidity = EXCLUDED.humidity,
			pressure = EXCLUDED.pressure,
			wind_speed = EXCLUDED.wind_speed,
			wind_direction = EXCLUDED.wind_direction,
			rainfall = EXCLUDED.rainfall,
			cloudiness = EXCLUDED.cloudiness,
			visibility = EXCLUDED.visibility,
			uv_index = EXCLUDED.uv_index,
			feels_like = EXCLUDED.feels_like,
			dew_point = EXCLUDED.dew_point
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.ExecContext(ctx,
			obs.Timestamp,
			obs.Temperature,
			obs.Humidity,
			obs.Pressure,
			obs.WindSpeed,
			obs.WindDirection,
			obs.Rainfall,
			obs.Cloudiness,
			obs.Visibility,
			obs.UVIndex,
			obs.FeelsLike,
			obs.DewPoint,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(observations)))

	return nil
}

// GetRecent retrieves observations from the trailing window, oldest first.
func (r *observationRepository) GetRecent(ctx context.Context, hours int) ([]models.Observation, error) {
	cutoff := float64(time.Now().Add(-time.Duration(hours) * time.Hour).Unix())

	query := `
		SELECT ts, temperature, humidity, pressure,
		       wind_speed, wind_direction, rainfall, cloudiness,
		       visibility, uv_index, feels_like, dew_point
		FROM observations
		WHERE ts >= $1
		ORDER BY ts ASC
	`

	observations := []models.Observation{}
	err := r.db.SelectContext(ctx, "get_recent_observations", &observations, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent observations: %w", err)
	}

	return observations, nil
}

// GetRange retrieves observations between two epoch timestamps, inclusive,
// oldest first.
func (r *observationRepository) GetRange(ctx context.Context, from, to float64) ([]models.Observation, error) {
	query := `
		SELECT ts, temperature, humidity, pressure,
		       wind_speed, wind_direction, rainfall, cloudiness,
		       visibility, uv_index, feels_like, dew_point
		FROM observations
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC
	`

	observations := []models.Observation{}
	err := r.db.SelectContext(ctx, "get_observation_range", &observations, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get observation range: %w", err)
	}

	return observations, nil
}

// DeleteOlderThan removes observations before the given epoch timestamp and
// returns the number of rows deleted.
func (r *observationRepository) DeleteOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "delete_old_observations",
		`DELETE FROM observations WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old observations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted observations: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_RETENTION] Old observations deleted", logging.Fields{
		"cutoff":  cutoff,
		"deleted": deleted,
	})

	return deleted, nil
}

// SaveSummary persists a computed statistics summary for a window.
func (r *observationRepository) SaveSummary(ctx context.Context, windowStart, windowEnd float64, summary models.StatisticsSummary) error {
	query := `
		INSERT INTO statistics_summaries (
			window_start, window_end,
			temperature_mean, temperature_std, temperature_min, temperature_max,
			humidity_mean, pressure_mean, wind_speed_mean, rainfall_total,
			comfort_index, weather_severity, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (window_start, window_end) DO UPDATE SET
			temperature_mean = EXCLUDED.temperature_mean,
			temperature_std = EXCLUDED.temperature_std,
			temperature_min = EXCLUDED.temperature_min,
			temperature_max = EXCLUDED.temperature_max,
			humidity_mean = EXCLUDED.humidity_mean,
			pressure_mean = EXCLUDED.pressure_mean,
			wind_speed_mean = EXCLUDED.wind_speed_mean,
			rainfall_total = EXCLUDED.rainfall_total,
			comfort_index = EXCLUDED.comfort_index,
			weather_severity = EXCLUDED.weather_severity,
			created_at = EXCLUDED.created_at
	`

	_, err := r.db.ExecContext(ctx, "save_summary", query,
		windowStart,
		windowEnd,
		summary.TemperatureMean,
		summary.TemperatureStd,
		summary.TemperatureMin,
		summary.TemperatureMax,
		summary.HumidityMean,
		summary.PressureMean,
		summary.WindSpeedMean,
		summary.RainfallTotal,
		summary.ComfortIndex,
		summary.WeatherSeverity,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}

// GetLatestSummary retrieves the most recently computed summary, or nil if
// none has been stored yet.
func (r *observationRepository) GetLatestSummary(ctx context.Context) (*models.StatisticsSummary, error) {
	query := `
		SELECT temperature_mean, temperature_std, temperature_min, temperature_max,
		       humidity_mean, pressure_mean, wind_speed_mean, rainfall_total,
		       comfort_index, weather_severity
		FROM statistics_summaries
		ORDER BY window_end DESC
		LIMIT 1
	`

	summaries := []models.StatisticsSummary{}
	err := r.db.SelectContext(ctx, "get_latest_summary", &summaries, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}

	if len(summaries) == 0 {
		return nil, nil
	}
	return &summaries[0], nil
}

// HealthCheck performs a repository health check
func (r *observationRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
