package engine

import "weather-analytics/internal/models"

// Export flattens observations into generic key/value records for the
// serialization boundary: one map per record, every scalar field by name.
// The output shares no memory with the input.
func Export(records []models.Observation) []map[string]float64 {
	exported := make([]map[string]float64, 0, len(records))

	for _, obs := range records {
		exported = append(exported, map[string]float64{
			"timestamp":      obs.Timestamp,
			"temperature":    obs.Temperature,
			"humidity":       obs.Humidity,
			"pressure":       obs.Pressure,
			"wind_speed":     obs.WindSpeed,
			"wind_direction": obs.WindDirection,
			"rainfall":       obs.Rainfall,
			"cloudiness":     obs.Cloudiness,
			"visibility":     obs.Visibility,
			"uv_index":       obs.UVIndex,
			"feels_like":     obs.FeelsLike,
			"dew_point":      obs.DewPoint,
		})
	}

	return exported
}
