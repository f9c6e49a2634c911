package engine

import (
	"math"
	"testing"

	"weather-analytics/internal/models"
)

// TestExportFieldCompleteness checks every scalar field appears by name in
// each exported record.
func TestExportFieldCompleteness(t *testing.T) {
	records := []models.Observation{{
		Timestamp:     1700000000.0,
		Temperature:   21.5,
		Humidity:      48.0,
		Pressure:      1012.0,
		WindSpeed:     3.2,
		WindDirection: 270.0,
		Rainfall:      0.4,
		Cloudiness:    65.0,
		Visibility:    9000.0,
		UVIndex:       2.0,
		FeelsLike:     21.5,
		DewPoint:      10.1,
	}}

	exported := Export(records)

	if len(exported) != 1 {
		t.Fatalf("got %d exported records, want 1", len(exported))
	}

	wantKeys := []string{
		"timestamp", "temperature", "humidity", "pressure",
		"wind_speed", "wind_direction", "rainfall", "cloudiness",
		"visibility", "uv_index", "feels_like", "dew_point",
	}

	flat := exported[0]
	if len(flat) != len(wantKeys) {
		t.Errorf("exported record has %d fields, want %d", len(flat), len(wantKeys))
	}
	for _, key := range wantKeys {
		if _, ok := flat[key]; !ok {
			t.Errorf("exported record missing field %q", key)
		}
	}

	if flat["wind_direction"] != 270.0 {
		t.Errorf("wind_direction = %v, want 270.0", flat["wind_direction"])
	}
}

// TestExportRoundTrip verifies statistics computed from reconstructed
// records match statistics computed directly: no information loss across
// the serialization boundary.
func TestExportRoundTrip(t *testing.T) {
	records := make([]models.Observation, 0, 48)
	for i := 0; i < 48; i++ {
		records = append(records, models.Observation{
			Timestamp:     float64(i) * 3600.0,
			Temperature:   18.0 + 6.0*math.Sin(0.2*float64(i)),
			Humidity:      55.0 + 10.0*math.Cos(0.1*float64(i)),
			Pressure:      1013.25 + 3.0*math.Sin(0.05*float64(i)),
			WindSpeed:     4.0 + float64(i%3),
			WindDirection: float64((i * 15) % 360),
			Rainfall:      float64(i%7) * 0.3,
			Cloudiness:    40.0,
			Visibility:    10000.0,
			UVIndex:       3.0,
		})
	}

	exported := Export(records)

	reconstructed := make([]models.Observation, 0, len(exported))
	for _, flat := range exported {
		reconstructed = append(reconstructed, models.Observation{
			Timestamp:     flat["timestamp"],
			Temperature:   flat["temperature"],
			Humidity:      flat["humidity"],
			Pressure:      flat["pressure"],
			WindSpeed:     flat["wind_speed"],
			WindDirection: flat["wind_direction"],
			Rainfall:      flat["rainfall"],
			Cloudiness:    flat["cloudiness"],
			Visibility:    flat["visibility"],
			UVIndex:       flat["uv_index"],
			FeelsLike:     flat["feels_like"],
			DewPoint:      flat["dew_point"],
		})
	}

	direct := ComputeStatistics(records)
	roundTripped := ComputeStatistics(reconstructed)

	if direct != roundTripped {
		t.Errorf("round-tripped summary %+v differs from direct %+v", roundTripped, direct)
	}
}
