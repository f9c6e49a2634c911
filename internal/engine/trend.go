package engine

import "weather-analytics/internal/models"

// trendWindow is the number of trailing observations used to estimate
// per-step deltas. Fewer records than this yields no predictions.
const trendWindow = 10

const secondsPerHour = 3600.0

// PredictTrend extrapolates hoursAhead synthetic observations from the tail
// of the supplied window. Temperature, humidity, and pressure follow the
// mean consecutive-step delta over the last trendWindow records; humidity is
// clamped into [0,100]. Wind, direction, cloudiness, visibility, and UV are
// held at the last observed value. Rainfall is forced to zero: the predictor
// does no precipitation modeling.
//
// Fewer than trendWindow records returns nil, not an error.
func PredictTrend(records []models.Observation, hoursAhead int) []models.Observation {
	if len(records) < trendWindow || hoursAhead <= 0 {
		return nil
	}

	window := records[len(records)-trendWindow:]

	var tempDelta, humidityDelta, pressureDelta float64
	for i := 1; i < len(window); i++ {
		tempDelta += window[i].Temperature - window[i-1].Temperature
		humidityDelta += window[i].Humidity - window[i-1].Humidity
		pressureDelta += window[i].Pressure - window[i-1].Pressure
	}

	steps := float64(len(window) - 1)
	tempDelta /= steps
	humidityDelta /= steps
	pressureDelta /= steps

	last := window[len(window)-1]
	predictions := make([]models.Observation, 0, hoursAhead)

	for i := 1; i <= hoursAhead; i++ {
		step := float64(i)

		temperature := last.Temperature + tempDelta*step
		humidity := clamp(last.Humidity+humidityDelta*step, 0, 100)

		predictions = append(predictions, models.Observation{
			Timestamp:     last.Timestamp + step*secondsPerHour,
			Temperature:   temperature,
			Humidity:      humidity,
			Pressure:      last.Pressure + pressureDelta*step,
			WindSpeed:     last.WindSpeed,
			WindDirection: last.WindDirection,
			Rainfall:      0,
			Cloudiness:    last.Cloudiness,
			Visibility:    last.Visibility,
			UVIndex:       last.UVIndex,
			FeelsLike:     HeatIndex(temperature, humidity),
			DewPoint:      DewPoint(temperature, humidity),
		})
	}

	return predictions
}
