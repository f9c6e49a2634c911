package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"weather-analytics/internal/services"
	"weather-analytics/pkg/logging"
)

// Scheduler runs the ingestion cycle on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ingestion *services.IngestionService
	logger    *logging.StructuredLogger
	interval  time.Duration
}

// New creates a new Scheduler.
func New(ingestion *services.IngestionService, interval time.Duration, logger *logging.StructuredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		ingestion: ingestion,
		logger:    logger,
		interval:  interval,
	}
}

// Start schedules the periodic ingestion job and starts the underlying
// scheduler asynchronously.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := s.ingestion.RunOnce(ctx)
		if err != nil {
			s.logger.Error(ctx, "[SCHEDULER_JOB_ERROR] Scheduled ingestion failed", logging.Fields{}, err)
			return
		}

		s.logger.Info(ctx, "[SCHEDULER_JOB] Scheduled ingestion completed", logging.Fields{
			"fetched": result.Fetched,
			"stored":  result.Stored,
			"deleted": result.Deleted,
		})
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
