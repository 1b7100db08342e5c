// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/etf-forecast/internal/forecast"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// ApproxEqual compares two values with a tolerance relative to the larger
// magnitude, falling back to an absolute tolerance near zero.
func ApproxEqual(a, b, tolerance float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tolerance*scale
}
