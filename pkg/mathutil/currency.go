// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/etf-forecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Only presentation code should call it; projections keep full precision.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within one cent)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// NonNegative clamps negative values to zero.
func NonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// PercentToDecimal converts a percentage (7.0) to a decimal rate (0.07).
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// DecimalToPercent converts a decimal rate (0.07) to a percentage (7.0).
func DecimalToPercent(rate float64) float64 {
	return rate * constants.PercentageMultiplier
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
