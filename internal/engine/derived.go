package engine

import "math"

// heatIndexThreshold is the activation temperature for the heat index
// polynomial. The comparison is made directly against the Celsius input;
// callers needing the Fahrenheit-regime formula must convert before calling.
const heatIndexThreshold = 80.0

// Magnus formula constants for dew point approximation.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// HeatIndex returns the perceived temperature adjusted for humidity.
// Below the activation threshold the input temperature is returned
// unchanged; above it the Rothfusz multi-term regression applies.
func HeatIndex(temperature, humidity float64) float64 {
	if temperature < heatIndexThreshold {
		return temperature
	}

	t := temperature
	h := humidity

	return -42.379 +
		2.04901523*t +
		10.14333127*h -
		0.22475541*t*h -
		6.83783e-3*t*t -
		5.481717e-2*h*h +
		1.22874e-3*t*t*h +
		8.5282e-4*t*h*h -
		1.99e-6*t*t*h*h
}

// DewPoint returns the saturation temperature for the given air temperature
// and relative humidity using the Magnus approximation. Humidity at or below
// zero yields NaN through the logarithm; callers screen inputs upstream.
func DewPoint(temperature, humidity float64) float64 {
	alpha := (magnusA*temperature)/(magnusB+temperature) + math.Log(humidity/100.0)
	return (magnusB * alpha) / (magnusA - alpha)
}
