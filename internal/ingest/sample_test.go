package ingest

import (
	"math"
	"testing"

	"weather-analytics/internal/engine"
	"weather-analytics/internal/models"
)

func ptr(v float64) *float64 { return &v }

// TestRawSample_ToObservation tests the default-filling conversion.
func TestRawSample_ToObservation(t *testing.T) {
	tests := []struct {
		name        string
		sample      RawSample
		checkValues func(*testing.T, models.Observation)
	}{
		{
			name: "all fields supplied pass through",
			sample: RawSample{
				Timestamp:     1700000000,
				Temperature:   ptr(18.5),
				Humidity:      ptr(72.0),
				Pressure:      ptr(1005.0),
				WindSpeed:     ptr(6.5),
				WindDirection: ptr(225.0),
				Rainfall:      ptr(0.8),
				Cloudiness:    ptr(90.0),
				Visibility:    ptr(4000.0),
				UVIndex:       ptr(1.0),
				FeelsLike:     ptr(16.2),
				DewPoint:      ptr(13.4),
			},
			checkValues: func(t *testing.T, obs models.Observation) {
				if obs.Temperature != 18.5 {
					t.Errorf("Temperature = %v, want 18.5", obs.Temperature)
				}
				if obs.FeelsLike != 16.2 {
					t.Errorf("FeelsLike = %v, want 16.2", obs.FeelsLike)
				}
				if obs.DewPoint != 13.4 {
					t.Errorf("DewPoint = %v, want 13.4", obs.DewPoint)
				}
			},
		},
		{
			name:   "all fields missing receive documented defaults",
			sample: RawSample{Timestamp: 1700000000},
			checkValues: func(t *testing.T, obs models.Observation) {
				if obs.Temperature != 20.0 {
					t.Errorf("Temperature = %v, want default 20.0", obs.Temperature)
				}
				if obs.Humidity != 50.0 {
					t.Errorf("Humidity = %v, want default 50.0", obs.Humidity)
				}
				if obs.Pressure != 1013.25 {
					t.Errorf("Pressure = %v, want default 1013.25", obs.Pressure)
				}
				if obs.WindSpeed != 5.0 {
					t.Errorf("WindSpeed = %v, want default 5.0", obs.WindSpeed)
				}
				if obs.WindDirection != 0.0 {
					t.Errorf("WindDirection = %v, want default 0", obs.WindDirection)
				}
				if obs.Rainfall != 0.0 {
					t.Errorf("Rainfall = %v, want default 0", obs.Rainfall)
				}
				if obs.Cloudiness != 50.0 {
					t.Errorf("Cloudiness = %v, want default 50.0", obs.Cloudiness)
				}
				if obs.Visibility != 10000.0 {
					t.Errorf("Visibility = %v, want default 10000", obs.Visibility)
				}
				if obs.UVIndex != 3.0 {
					t.Errorf("UVIndex = %v, want default 3", obs.UVIndex)
				}
			},
		},
		{
			name: "missing feels_like falls back to temperature",
			sample: RawSample{
				Timestamp:   1700000000,
				Temperature: ptr(27.0),
			},
			checkValues: func(t *testing.T, obs models.Observation) {
				if obs.FeelsLike != 27.0 {
					t.Errorf("FeelsLike = %v, want temperature 27.0", obs.FeelsLike)
				}
			},
		},
		{
			name: "missing dew point is computed from temperature and humidity",
			sample: RawSample{
				Timestamp:   1700000000,
				Temperature: ptr(20.0),
				Humidity:    ptr(50.0),
			},
			checkValues: func(t *testing.T, obs models.Observation) {
				want := engine.DewPoint(20.0, 50.0)
				if math.Abs(obs.DewPoint-want) > 1e-9 {
					t.Errorf("DewPoint = %v, want computed %v", obs.DewPoint, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := tt.sample.ToObservation()

			if obs.Timestamp != tt.sample.Timestamp {
				t.Errorf("Timestamp = %v, want %v", obs.Timestamp, tt.sample.Timestamp)
			}
			tt.checkValues(t, obs)
		})
	}
}
