package ingest

import (
	"weather-analytics/internal/engine"
	"weather-analytics/internal/models"
)

// Documented defaults for fields the provider did not report.
const (
	defaultTemperature   = 20.0
	defaultHumidity      = 50.0
	defaultPressure      = 1013.25
	defaultWindSpeed     = 5.0
	defaultWindDirection = 0.0
	defaultRainfall      = 0.0
	defaultCloudiness    = 50.0
	defaultVisibility    = 10000.0
	defaultUVIndex       = 3.0
)

// RawSample is one provider sample before defaults are applied. Nil fields
// were absent from the provider response.
type RawSample struct {
	Timestamp     float64
	Temperature   *float64
	Humidity      *float64
	Pressure      *float64
	WindSpeed     *float64
	WindDirection *float64
	Rainfall      *float64
	Cloudiness    *float64
	Visibility    *float64
	UVIndex       *float64
	FeelsLike     *float64
	DewPoint      *float64
}

// ToObservation fills missing fields with the documented defaults: apparent
// temperature falls back to the air temperature, and the dew point is
// computed from temperature and humidity when absent. The engine itself
// never sees partial records.
func (r *RawSample) ToObservation() models.Observation {
	obs := models.Observation{
		Timestamp:     r.Timestamp,
		Temperature:   valueOr(r.Temperature, defaultTemperature),
		Humidity:      valueOr(r.Humidity, defaultHumidity),
		Pressure:      valueOr(r.Pressure, defaultPressure),
		WindSpeed:     valueOr(r.WindSpeed, defaultWindSpeed),
		WindDirection: valueOr(r.WindDirection, defaultWindDirection),
		Rainfall:      valueOr(r.Rainfall, defaultRainfall),
		Cloudiness:    valueOr(r.Cloudiness, defaultCloudiness),
		Visibility:    valueOr(r.Visibility, defaultVisibility),
		UVIndex:       valueOr(r.UVIndex, defaultUVIndex),
	}

	obs.FeelsLike = valueOr(r.FeelsLike, obs.Temperature)

	if r.DewPoint != nil {
		obs.DewPoint = *r.DewPoint
	} else {
		obs.DewPoint = engine.DewPoint(obs.Temperature, obs.Humidity)
	}

	return obs
}

func valueOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
