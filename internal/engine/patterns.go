package engine

import (
	"math"

	"weather-analytics/internal/models"
)

const (
	// minPatternRecords is the smallest window the analyzer accepts: one
	// full day of hourly samples.
	minPatternRecords = 24

	// extremeDeltaThreshold flags a consecutive-hour temperature change as
	// an extreme event when its absolute value exceeds this many degrees.
	extremeDeltaThreshold = 5.0

	// rainyHourThreshold is the minimum hourly rainfall counted as rain.
	rainyHourThreshold = 0.1
)

// AnalyzePatterns scans a window of observations for temperature extremes,
// rapid-change events, and precipitation patterns. Windows shorter than
// minPatternRecords return an InsufficientDataError, never a panic. Each
// call is a pure function of its input; overlapping windows are independent.
func AnalyzePatterns(records []models.Observation) (*models.PatternReport, error) {
	if len(records) < minPatternRecords {
		return nil, &models.InsufficientDataError{
			Operation: "pattern analysis",
			Required:  minPatternRecords,
			Got:       len(records),
		}
	}

	report := &models.PatternReport{
		DailyMax:      records[0].Temperature,
		DailyMin:      records[0].Temperature,
		ExtremeEvents: make([]models.ExtremeEvent, 0),
	}

	for i, obs := range records {
		if obs.Temperature > report.DailyMax {
			report.DailyMax = obs.Temperature
		}
		if obs.Temperature < report.DailyMin {
			report.DailyMin = obs.Temperature
		}

		if i > 0 {
			delta := obs.Temperature - records[i-1].Temperature
			if math.Abs(delta) > extremeDeltaThreshold {
				eventType := models.EventSpike
				if delta < 0 {
					eventType = models.EventDrop
				}
				report.ExtremeEvents = append(report.ExtremeEvents, models.ExtremeEvent{
					Timestamp: obs.Timestamp,
					Delta:     delta,
					Type:      eventType,
				})
			}
		}

		report.TotalRainfall += obs.Rainfall
		if obs.Rainfall > rainyHourThreshold {
			report.RainyHours++
		}
		if obs.Rainfall > report.MaxHourlyRain {
			report.MaxHourlyRain = obs.Rainfall
		}
	}

	report.DailyRange = report.DailyMax - report.DailyMin
	report.RainProbability = float64(report.RainyHours) / float64(len(records)) * 100.0

	return report, nil
}
