package models

// Observation represents a single timestamped meteorological sample.
// Immutable after creation; the engine never mutates caller-supplied records.
type Observation struct {
	Timestamp     float64 `json:"timestamp" db:"ts"`
	Temperature   float64 `json:"temperature" db:"temperature"`
	Humidity      float64 `json:"humidity" db:"humidity"`
	Pressure      float64 `json:"pressure" db:"pressure"`
	WindSpeed     float64 `json:"wind_speed" db:"wind_speed"`
	WindDirection float64 `json:"wind_direction" db:"wind_direction"`
	Rainfall      float64 `json:"rainfall" db:"rainfall"`
	Cloudiness    float64 `json:"cloudiness" db:"cloudiness"`
	Visibility    float64 `json:"visibility" db:"visibility"`
	UVIndex       float64 `json:"uv_index" db:"uv_index"`
	FeelsLike     float64 `json:"feels_like" db:"feels_like"`
	DewPoint      float64 `json:"dew_point" db:"dew_point"`
}

// StatisticsSummary holds aggregate statistics and heuristic scores over a
// window of observations. Created fresh per aggregator call.
type StatisticsSummary struct {
	TemperatureMean float64 `json:"temperature_mean" db:"temperature_mean"`
	TemperatureStd  float64 `json:"temperature_std" db:"temperature_std"`
	TemperatureMin  float64 `json:"temperature_min" db:"temperature_min"`
	TemperatureMax  float64 `json:"temperature_max" db:"temperature_max"`
	HumidityMean    float64 `json:"humidity_mean" db:"humidity_mean"`
	PressureMean    float64 `json:"pressure_mean" db:"pressure_mean"`
	WindSpeedMean   float64 `json:"wind_speed_mean" db:"wind_speed_mean"`
	RainfallTotal   float64 `json:"rainfall_total" db:"rainfall_total"`
	ComfortIndex    float64 `json:"comfort_index" db:"comfort_index"`
	WeatherSeverity float64 `json:"weather_severity" db:"weather_severity"`
}

// Extreme-change event tags.
const (
	EventSpike = "spike"
	EventDrop  = "drop"
)

// ExtremeEvent records a rapid consecutive-hour temperature change.
type ExtremeEvent struct {
	Timestamp float64 `json:"timestamp"`
	Delta     float64 `json:"delta"`
	Type      string  `json:"type"` // EventSpike or EventDrop
}

// PatternReport summarizes temperature extremes, rapid-change events, and
// precipitation statistics over a window of observations.
type PatternReport struct {
	DailyMax        float64        `json:"daily_max"`
	DailyMin        float64        `json:"daily_min"`
	DailyRange      float64        `json:"daily_range"`
	ExtremeEvents   []ExtremeEvent `json:"extreme_events"`
	TotalRainfall   float64        `json:"total_rainfall"`
	RainyHours      int            `json:"rainy_hours"`
	MaxHourlyRain   float64        `json:"max_hourly_rain"`
	RainProbability float64        `json:"rain_probability"`
}

// InsufficientDataError signals a window smaller than an operation's minimum.
// It is a branch condition for callers, not a failure.
type InsufficientDataError struct {
	Operation string
	Required  int
	Got       int
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data for " + e.Operation
}

// IsTransient returns true: the condition clears once more records arrive.
func (e *InsufficientDataError) IsTransient() bool {
	return true
}

// ValidationError represents a data validation error raised at the
// ingestion boundary before records reach the engine.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
