package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weather-analytics/pkg/logging"
)

const hourlyParameters = "temperature_2m,relative_humidity_2m,surface_pressure," +
	"wind_speed_10m,wind_direction_10m,precipitation,cloudcover,visibility," +
	"uv_index,apparent_temperature,dewpoint_2m"

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// BackoffConfig controls the retry behaviour of the provider client.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// OpenMeteoClient fetches hourly observation series from an Open-Meteo
// compatible forecast endpoint, with retries, exponential backoff, and a
// circuit breaker around the upstream.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	logger  *logging.StructuredLogger
}

// NewOpenMeteoClient creates a provider client against the given base URL.
func NewOpenMeteoClient(baseURL string, client *http.Client, logger *logging.StructuredLogger) *OpenMeteoClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoClient{
		baseURL: baseURL,
		client:  client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
		logger:  logger,
	}
}

// openMeteoResponse mirrors the hourly arrays of the provider payload.
// Requested with timeformat=unixtime so timestamps arrive as epoch seconds.
type openMeteoResponse struct {
	Hourly struct {
		Time                []float64 `json:"time"`
		Temperature2m       []float64 `json:"temperature_2m"`
		RelativeHumidity2m  []float64 `json:"relative_humidity_2m"`
		SurfacePressure     []float64 `json:"surface_pressure"`
		WindSpeed10m        []float64 `json:"wind_speed_10m"`
		WindDirection10m    []float64 `json:"wind_direction_10m"`
		Precipitation       []float64 `json:"precipitation"`
		CloudCover          []float64 `json:"cloudcover"`
		Visibility          []float64 `json:"visibility"`
		UVIndex             []float64 `json:"uv_index"`
		ApparentTemperature []float64 `json:"apparent_temperature"`
		Dewpoint2m          []float64 `json:"dewpoint_2m"`
	} `json:"hourly"`
}

// FetchHourly retrieves up to hours hourly samples for the given coordinates.
// Fields the provider omits stay nil on the returned samples; defaults are
// applied at conversion time.
func (c *OpenMeteoClient) FetchHourly(ctx context.Context, latitude, longitude float64, hours int) ([]RawSample, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", latitude))
	values.Set("longitude", fmt.Sprintf("%f", longitude))
	values.Set("hourly", hourlyParameters)
	values.Set("timeformat", "unixtime")
	values.Set("forecast_hours", fmt.Sprintf("%d", hours))

	requestURL := c.baseURL + "?" + values.Encode()

	resp, err := c.doWithResilience(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hourly data: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	hourly := payload.Hourly
	count := len(hourly.Time)
	if count > hours {
		count = hours
	}

	samples := make([]RawSample, 0, count)
	for i := 0; i < count; i++ {
		samples = append(samples, RawSample{
			Timestamp:     hourly.Time[i],
			Temperature:   at(hourly.Temperature2m, i),
			Humidity:      at(hourly.RelativeHumidity2m, i),
			Pressure:      at(hourly.SurfacePressure, i),
			WindSpeed:     at(hourly.WindSpeed10m, i),
			WindDirection: at(hourly.WindDirection10m, i),
			Rainfall:      at(hourly.Precipitation, i),
			Cloudiness:    at(hourly.CloudCover, i),
			Visibility:    at(hourly.Visibility, i),
			UVIndex:       at(hourly.UVIndex, i),
			FeelsLike:     at(hourly.ApparentTemperature, i),
			DewPoint:      at(hourly.Dewpoint2m, i),
		})
	}

	c.logger.Debug(ctx, "[PROVIDER_FETCH] Hourly samples fetched", logging.Fields{
		"count":     len(samples),
		"latitude":  latitude,
		"longitude": longitude,
	})

	return samples, nil
}

// doWithResilience executes the request with retries, exponential backoff,
// and the circuit breaker.
func (c *OpenMeteoClient) doWithResilience(ctx context.Context, requestURL string) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If the circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// at returns a pointer to values[i], or nil when the array is too short.
func at(values []float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	v := values[i]
	return &v
}
