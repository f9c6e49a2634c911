package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Ingestion IngestionConfig
	Engine    EngineConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// IngestionConfig holds weather provider and scheduling settings
type IngestionConfig struct {
	ProviderURL   string
	Latitude      float64
	Longitude     float64
	FetchHours    int
	FetchInterval time.Duration
	RetentionDays int
}

// EngineConfig holds analytics engine settings
type EngineConfig struct {
	DefaultWindowHours int
	CacheSize          int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func LoadConfig() (*Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getenvDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getenvInt("SERVER_PORT", 8080),
			ReadTimeout:  getenvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getenvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getenvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getenvDefault("DB_HOST", "localhost"),
			Port:            getenvInt("DB_PORT", 5432),
			User:            getenvDefault("DB_USER", "weather"),
			Password:        getenvDefault("DB_PASSWORD", "weather"),
			Database:        getenvDefault("DB_NAME", "weather_analytics"),
			SSLMode:         getenvDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Ingestion: IngestionConfig{
			ProviderURL:   getenvDefault("PROVIDER_URL", "https://api.open-meteo.com/v1/forecast"),
			Latitude:      getenvFloat("LOCATION_LATITUDE", 51.5074),
			Longitude:     getenvFloat("LOCATION_LONGITUDE", -0.1278),
			FetchHours:    getenvInt("FETCH_HOURS", 48),
			FetchInterval: getenvDuration("FETCH_INTERVAL", 1*time.Hour),
			RetentionDays: getenvInt("RETENTION_DAYS", 30),
		},
		Engine: EngineConfig{
			DefaultWindowHours: getenvInt("ENGINE_WINDOW_HOURS", 48),
			CacheSize:          getenvInt("ENGINE_CACHE_SIZE", 64),
		},
		Logging: LoggingConfig{
			Level: getenvDefault("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host must not be empty")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
	}
	if c.Ingestion.Latitude < -90 || c.Ingestion.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", c.Ingestion.Latitude)
	}
	if c.Ingestion.Longitude < -180 || c.Ingestion.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", c.Ingestion.Longitude)
	}
	if c.Ingestion.FetchHours <= 0 {
		return fmt.Errorf("invalid fetch hours: %d", c.Ingestion.FetchHours)
	}
	if c.Engine.DefaultWindowHours <= 0 {
		return fmt.Errorf("invalid engine window hours: %d", c.Engine.DefaultWindowHours)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
