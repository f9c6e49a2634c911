package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-analytics/internal/config"
	"weather-analytics/internal/ingest"
	"weather-analytics/internal/repository"
	"weather-analytics/internal/scheduler"
	"weather-analytics/internal/services"
	"weather-analytics/pkg/database"
	"weather-analytics/pkg/logging"
	"weather-analytics/pkg/metrics"
)

func main() {
	// Parse command-line flags
	daemon := flag.Bool("daemon", false, "Run continuously on the configured fetch interval")
	interval := flag.Duration("interval", 0, "Override the fetch interval in daemon mode (e.g. 30m)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("weather-analytics-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting observation ingester", logging.Fields{
		"version":      "1.0.0",
		"provider_url": cfg.Ingestion.ProviderURL,
		"latitude":     cfg.Ingestion.Latitude,
		"longitude":    cfg.Ingestion.Longitude,
		"daemon":       *daemon,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_analytics_ingester")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and services
	observationRepo := repository.NewObservationRepository(db, logger, metricsCollector)
	provider := ingest.NewOpenMeteoClient(cfg.Ingestion.ProviderURL, nil, logger)
	ingestionService := services.NewIngestionService(observationRepo, provider, logger, metricsCollector, cfg.Ingestion)

	if *daemon {
		fetchInterval := cfg.Ingestion.FetchInterval
		if *interval > 0 {
			fetchInterval = *interval
		}

		ingestScheduler := scheduler.New(ingestionService, fetchInterval, logger)
		if err := ingestScheduler.Start(); err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to start scheduler", logging.Fields{}, err)
		}
		defer ingestScheduler.Stop()

		logger.Info(ctx, "[INGESTER_DAEMON] Running on interval", logging.Fields{
			"interval": fetchInterval.String(),
		})

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info(ctx, "[INGESTER_STOP] Shutting down", logging.Fields{})
		return
	}

	// One-shot mode.
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	result, err := ingestionService.RunOnce(runCtx)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{}, err)
	}

	fmt.Println("INGESTION COMPLETE")
	fmt.Printf("Fetched:  %d\n", result.Fetched)
	fmt.Printf("Stored:   %d\n", result.Stored)
	fmt.Printf("Deleted:  %d\n", result.Deleted)
	fmt.Printf("Duration: %v\n", result.Duration)

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"fetched":          result.Fetched,
		"stored":           result.Stored,
		"deleted":          result.Deleted,
		"duration_seconds": result.Duration.Seconds(),
	})
}
