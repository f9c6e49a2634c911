package engine

import (
	"math"
	"runtime"
	"sync"

	"weather-analytics/internal/models"
)

// Tuning exposes the heuristic reference values and weights used by the
// comfort and severity scores. Zero value is not usable; start from
// DefaultTuning and override individual fields.
type Tuning struct {
	ComfortOptimalTemp     float64
	ComfortTempWeight      float64
	ComfortOptimalHumidity float64
	ComfortHumidityWeight  float64
	ComfortWindWeight      float64

	SeverityBaselineTemp float64
	SeverityTempWeight   float64
	SeverityWindWeight   float64
	SeverityRainWeight   float64
	SeverityCeiling      float64
}

// DefaultTuning returns the standard comfort/severity parameters.
func DefaultTuning() Tuning {
	return Tuning{
		ComfortOptimalTemp:     22.0,
		ComfortTempWeight:      2.0,
		ComfortOptimalHumidity: 45.0,
		ComfortHumidityWeight:  1.5,
		ComfortWindWeight:      3.0,

		SeverityBaselineTemp: 15.0,
		SeverityTempWeight:   1.5,
		SeverityWindWeight:   4.0,
		SeverityRainWeight:   20.0,
		SeverityCeiling:      100.0,
	}
}

// parallelThreshold is the window size above which the reduction is
// partitioned across worker goroutines. The per-field accumulator is
// associative, so partials merge without changing results beyond
// floating-point reassociation.
const parallelThreshold = 4096

// statsAccumulator carries the partial reduction state for one partition.
// add and merge keep every field associative and commutative.
type statsAccumulator struct {
	count int

	tempSum   float64
	tempSumSq float64
	tempMin   float64
	tempMax   float64

	humiditySum float64
	pressureSum float64
	windSum     float64
	rainfallSum float64

	comfortSum  float64
	severitySum float64
}

func newStatsAccumulator() statsAccumulator {
	return statsAccumulator{
		tempMin: math.Inf(1),
		tempMax: math.Inf(-1),
	}
}

func (a *statsAccumulator) add(obs models.Observation, tuning Tuning) {
	a.count++

	a.tempSum += obs.Temperature
	a.tempSumSq += obs.Temperature * obs.Temperature
	if obs.Temperature < a.tempMin {
		a.tempMin = obs.Temperature
	}
	if obs.Temperature > a.tempMax {
		a.tempMax = obs.Temperature
	}

	a.humiditySum += obs.Humidity
	a.pressureSum += obs.Pressure
	a.windSum += obs.WindSpeed
	a.rainfallSum += obs.Rainfall

	a.comfortSum += comfortScore(obs, tuning)
	a.severitySum += severityScore(obs, tuning)
}

func (a *statsAccumulator) merge(b statsAccumulator) {
	a.count += b.count

	a.tempSum += b.tempSum
	a.tempSumSq += b.tempSumSq
	if b.tempMin < a.tempMin {
		a.tempMin = b.tempMin
	}
	if b.tempMax > a.tempMax {
		a.tempMax = b.tempMax
	}

	a.humiditySum += b.humiditySum
	a.pressureSum += b.pressureSum
	a.windSum += b.windSum
	a.rainfallSum += b.rainfallSum

	a.comfortSum += b.comfortSum
	a.severitySum += b.severitySum
}

// comfortScore rates one observation 0-100: the mean of three normalized
// sub-scores for temperature, humidity, and wind, each clamped before
// averaging.
func comfortScore(obs models.Observation, t Tuning) float64 {
	tempScore := clamp(100.0-t.ComfortTempWeight*math.Abs(obs.Temperature-t.ComfortOptimalTemp), 0, 100)
	humidityScore := clamp(100.0-t.ComfortHumidityWeight*math.Abs(obs.Humidity-t.ComfortOptimalHumidity), 0, 100)
	windScore := clamp(100.0-t.ComfortWindWeight*obs.WindSpeed, 0, 100)

	return (tempScore + humidityScore + windScore) / 3.0
}

// severityScore rates adverse-condition intensity for one observation,
// capped at the configured ceiling.
func severityScore(obs models.Observation, t Tuning) float64 {
	severity := t.SeverityTempWeight*math.Abs(obs.Temperature-t.SeverityBaselineTemp) +
		t.SeverityWindWeight*obs.WindSpeed +
		t.SeverityRainWeight*obs.Rainfall

	if severity > t.SeverityCeiling {
		severity = t.SeverityCeiling
	}
	return severity
}

// ComputeStatistics aggregates a window of observations into a summary
// using the default tuning. Empty input yields a zero-valued summary.
func ComputeStatistics(records []models.Observation) models.StatisticsSummary {
	return ComputeStatisticsWith(records, DefaultTuning())
}

// ComputeStatisticsWith aggregates a window of observations with explicit
// tuning parameters. Large windows are reduced in parallel partitions and
// merged; results are identical up to floating-point reassociation.
func ComputeStatisticsWith(records []models.Observation, tuning Tuning) models.StatisticsSummary {
	if len(records) == 0 {
		return models.StatisticsSummary{}
	}

	var acc statsAccumulator
	if len(records) >= parallelThreshold {
		acc = reduceParallel(records, tuning)
	} else {
		acc = newStatsAccumulator()
		for _, obs := range records {
			acc.add(obs, tuning)
		}
	}

	n := float64(acc.count)
	mean := acc.tempSum / n

	// Population variance via E[x^2] - mean^2; clamp against negative
	// values introduced by floating-point cancellation.
	variance := acc.tempSumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	return models.StatisticsSummary{
		TemperatureMean: mean,
		TemperatureStd:  math.Sqrt(variance),
		TemperatureMin:  acc.tempMin,
		TemperatureMax:  acc.tempMax,
		HumidityMean:    acc.humiditySum / n,
		PressureMean:    acc.pressureSum / n,
		WindSpeedMean:   acc.windSum / n,
		RainfallTotal:   acc.rainfallSum,
		ComfortIndex:    acc.comfortSum / n,
		WeatherSeverity: acc.severitySum / n,
	}
}

// reduceParallel partitions the window across worker goroutines and merges
// the partial accumulators.
func reduceParallel(records []models.Observation, tuning Tuning) statsAccumulator {
	workers := runtime.NumCPU()
	if workers > len(records) {
		workers = len(records)
	}

	partials := make([]statsAccumulator, workers)
	chunk := (len(records) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()

			acc := newStatsAccumulator()
			for _, obs := range records[start:end] {
				acc.add(obs, tuning)
			}
			partials[w] = acc
		}(w, start, end)
	}
	wg.Wait()

	merged := newStatsAccumulator()
	for _, p := range partials {
		if p.count > 0 {
			merged.merge(p)
		}
	}
	return merged
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
