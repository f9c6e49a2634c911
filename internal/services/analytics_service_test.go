package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"weather-analytics/internal/config"
	"weather-analytics/internal/engine"
	"weather-analytics/internal/ingest"
	"weather-analytics/internal/models"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

// One collector for the whole test binary; promauto registers globally.
var testCollector = metrics.NewCollector("services_test")

func quietLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("test", "0.0.0", logging.FatalLevel)
}

// stubRepository satisfies repository.ObservationRepository in memory.
type stubRepository struct {
	observations []models.Observation
	savedBatches [][]models.Observation
	summaries    []models.StatisticsSummary
	stored       *models.StatisticsSummary
	recentCalls  int
	deletedUpTo  float64
}

func (s *stubRepository) SaveObservations(ctx context.Context, observations []models.Observation) error {
	s.savedBatches = append(s.savedBatches, observations)
	s.observations = append(s.observations, observations...)
	return nil
}

func (s *stubRepository) GetRecent(ctx context.Context, hours int) ([]models.Observation, error) {
	s.recentCalls++
	return s.observations, nil
}

func (s *stubRepository) GetRange(ctx context.Context, from, to float64) ([]models.Observation, error) {
	return s.observations, nil
}

func (s *stubRepository) DeleteOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	s.deletedUpTo = cutoff
	return 0, nil
}

func (s *stubRepository) SaveSummary(ctx context.Context, windowStart, windowEnd float64, summary models.StatisticsSummary) error {
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *stubRepository) GetLatestSummary(ctx context.Context) (*models.StatisticsSummary, error) {
	return s.stored, nil
}

func (s *stubRepository) HealthCheck(ctx context.Context) error {
	return nil
}

func seededRepository(n int) *stubRepository {
	repo := &stubRepository{}
	for i := 0; i < n; i++ {
		repo.observations = append(repo.observations, models.Observation{
			Timestamp:   float64(i) * 3600.0,
			Temperature: 15.0 + float64(i)*0.5,
			Humidity:    50.0,
			Pressure:    1013.25,
			WindSpeed:   4.0,
		})
	}
	return repo
}

// TestGetStatisticsComputesAndPersists verifies the summary is computed from
// the window and persisted through the repository.
func TestGetStatisticsComputesAndPersists(t *testing.T) {
	repo := seededRepository(24)
	svc := NewAnalyticsService(repo, quietLogger(), testCollector, engine.DefaultTuning(), 8)

	summary, err := svc.GetStatistics(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := engine.ComputeStatistics(repo.observations)
	if summary != want {
		t.Errorf("summary %+v differs from direct engine result %+v", summary, want)
	}

	if len(repo.summaries) != 1 {
		t.Errorf("persisted %d summaries, want 1", len(repo.summaries))
	}
}

// TestGetStatisticsUsesCache verifies a repeated window is served from cache
// without recomputation or re-persisting.
func TestGetStatisticsUsesCache(t *testing.T) {
	repo := seededRepository(24)
	svc := NewAnalyticsService(repo, quietLogger(), testCollector, engine.DefaultTuning(), 8)

	first, err := svc.GetStatistics(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.GetStatistics(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("cached summary %+v differs from first %+v", second, first)
	}
	if len(repo.summaries) != 1 {
		t.Errorf("persisted %d summaries, want 1 (cache hit must not re-persist)", len(repo.summaries))
	}
}

// TestGetStatisticsEmptyWindowFallsBackToStored verifies an empty window
// serves the last stored summary when one exists.
func TestGetStatisticsEmptyWindowFallsBackToStored(t *testing.T) {
	repo := &stubRepository{
		stored: &models.StatisticsSummary{TemperatureMean: 19.5},
	}
	svc := NewAnalyticsService(repo, quietLogger(), testCollector, engine.DefaultTuning(), 8)

	summary, err := svc.GetStatistics(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TemperatureMean != 19.5 {
		t.Errorf("TemperatureMean = %v, want stored 19.5", summary.TemperatureMean)
	}
}

// TestGetStatisticsEmptyWindowZeroSummary verifies an empty window with no
// stored summary yields the zero value, not an error.
func TestGetStatisticsEmptyWindowZeroSummary(t *testing.T) {
	repo := &stubRepository{}
	svc := NewAnalyticsService(repo, quietLogger(), testCollector, engine.DefaultTuning(), 8)

	summary, err := svc.GetStatistics(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (models.StatisticsSummary{}) {
		t.Errorf("summary = %+v, want zero value", summary)
	}
}

// TestAnalyzePatternsPropagatesInsufficientData verifies the typed marker
// error reaches the caller.
func TestAnalyzePatternsPropagatesInsufficientData(t *testing.T) {
	repo := seededRepository(10)
	svc := NewAnalyticsService(repo, quietLogger(), testCollector, engine.DefaultTuning(), 8)

	_, err := svc.AnalyzePatterns(context.Background(), 24)

	var insufficientErr *models.InsufficientDataError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("err = %v, want *models.InsufficientDataError", err)
	}
}

// stubProvider satisfies HourlyProvider with canned samples.
type stubProvider struct {
	samples []ingest.RawSample
	err     error
}

func (p *stubProvider) FetchHourly(ctx context.Context, latitude, longitude float64, hours int) ([]ingest.RawSample, error) {
	return p.samples, p.err
}

// TestIngestionRunOnce verifies the fetch-convert-store cycle and retention.
func TestIngestionRunOnce(t *testing.T) {
	temp := 16.0
	provider := &stubProvider{
		samples: []ingest.RawSample{
			{Timestamp: 1700000000, Temperature: &temp},
			{Timestamp: 1700003600},
		},
	}
	repo := &stubRepository{}

	svc := NewIngestionService(repo, provider, quietLogger(), testCollector, config.IngestionConfig{
		Latitude:      51.5,
		Longitude:     -0.13,
		FetchHours:    2,
		RetentionDays: 30,
	})

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Fetched != 2 || result.Stored != 2 {
		t.Errorf("fetched/stored = %d/%d, want 2/2", result.Fetched, result.Stored)
	}
	if len(repo.savedBatches) != 1 {
		t.Fatalf("saved %d batches, want 1", len(repo.savedBatches))
	}

	// The sample without a temperature takes the documented default.
	stored := repo.savedBatches[0]
	if stored[0].Temperature != 16.0 {
		t.Errorf("first stored temperature = %v, want 16.0", stored[0].Temperature)
	}
	if stored[1].Temperature != 20.0 {
		t.Errorf("second stored temperature = %v, want default 20.0", stored[1].Temperature)
	}

	wantCutoff := float64(time.Now().AddDate(0, 0, -30).Unix())
	if repo.deletedUpTo < wantCutoff-5 || repo.deletedUpTo > wantCutoff+5 {
		t.Errorf("retention cutoff = %v, want ~%v", repo.deletedUpTo, wantCutoff)
	}
}

// TestIngestionRunOnceFetchError verifies provider failures surface wrapped.
func TestIngestionRunOnceFetchError(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream down")}
	repo := &stubRepository{}

	svc := NewIngestionService(repo, provider, quietLogger(), testCollector, config.IngestionConfig{
		FetchHours: 2,
	})

	if _, err := svc.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failing provider")
	}
	if len(repo.savedBatches) != 0 {
		t.Errorf("stored %d batches on failed fetch, want 0", len(repo.savedBatches))
	}
}
