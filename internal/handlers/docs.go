package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Weather Analytics API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	hoursParam := map[string]interface{}{
		"name":        "hours",
		"in":          "query",
		"description": "Observation window in hours (default: configured window, max: 168)",
		"required":    false,
		"schema":      map[string]interface{}{"type": "integer", "default": 24},
	}

	observationSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"timestamp":      map[string]string{"type": "number"},
			"temperature":    map[string]string{"type": "number"},
			"humidity":       map[string]string{"type": "number"},
			"pressure":       map[string]string{"type": "number"},
			"wind_speed":     map[string]string{"type": "number"},
			"wind_direction": map[string]string{"type": "number"},
			"rainfall":       map[string]string{"type": "number"},
			"cloudiness":     map[string]string{"type": "number"},
			"visibility":     map[string]string{"type": "number"},
			"uv_index":       map[string]string{"type": "number"},
			"feels_like":     map[string]string{"type": "number"},
			"dew_point":      map[string]string{"type": "number"},
		},
	}

	windowResponse := func(description string, items interface{}) map[string]interface{} {
		return map[string]interface{}{
			"200": map[string]interface{}{
				"description": description,
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"window_hours": map[string]string{"type": "integer"},
								"count":        map[string]string{"type": "integer"},
								"data": map[string]interface{}{
									"type":  "array",
									"items": items,
								},
							},
						},
					},
				},
			},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Weather Analytics API",
			"description": "Weather observation analytics with statistics, trend prediction, and pattern analysis",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Weather Analytics Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/weather": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get recent observations",
					"description": "Retrieve stored weather observations within the requested window",
					"parameters":  []map[string]interface{}{hoursParam},
					"responses":   windowResponse("Observations in the window", observationSchema),
				},
			},
			"/api/weather/stats": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get window statistics",
					"description": "Aggregate statistics over the requested observation window",
					"parameters":  []map[string]interface{}{hoursParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Statistics summary",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"temperature_mean": map[string]string{"type": "number"},
											"temperature_min":  map[string]string{"type": "number"},
											"temperature_max":  map[string]string{"type": "number"},
											"temperature_std":  map[string]string{"type": "number"},
											"humidity_mean":    map[string]string{"type": "number"},
											"pressure_mean":    map[string]string{"type": "number"},
											"wind_speed_mean":  map[string]string{"type": "number"},
											"rainfall_total":   map[string]string{"type": "number"},
											"comfort_index":    map[string]string{"type": "number"},
											"weather_severity": map[string]string{"type": "number"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/weather/export": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Export observations as flat records",
					"description": "Export the window as flat field-to-value maps including derived metrics",
					"parameters":  []map[string]interface{}{hoursParam},
					"responses": windowResponse("Exported records", map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]string{"type": "number"},
					}),
				},
			},
			"/api/predictions/trends": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Predict hourly trends",
					"description": "Linear trend extrapolation of temperature, humidity, and pressure",
					"parameters": []map[string]interface{}{
						hoursParam,
						{
							"name":        "hours_ahead",
							"in":          "query",
							"description": "Hours to predict (default: 24, max: 72)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 24},
						},
					},
					"responses": windowResponse("Predicted observations", observationSchema),
				},
			},
			"/api/analysis/patterns": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Analyze weather patterns",
					"description": "Daily extremes, extreme temperature events, and rain pattern analysis; returns an insufficient_data marker when the window holds fewer than 24 observations",
					"parameters":  []map[string]interface{}{hoursParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Pattern report or insufficient data marker",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"daily_max":        map[string]string{"type": "number"},
											"daily_min":        map[string]string{"type": "number"},
											"daily_range":      map[string]string{"type": "number"},
											"extreme_events":   map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
											"total_rainfall":   map[string]string{"type": "number"},
											"rainy_hours":      map[string]string{"type": "integer"},
											"max_hourly_rain":  map[string]string{"type": "number"},
											"rain_probability": map[string]string{"type": "number"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and its storage are available",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
