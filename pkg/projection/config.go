// Package projection simulates a monthly ETF savings plan under German
// capital-gains taxation (Vorabpauschale and exit tax) and reports one
// inflation-adjusted snapshot per year.
package projection

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/pkg/mathutil"
)

// Statutory tax parameters.
const (
	// DefaultBaseInterestRate is the 2025 Basiszins.
	DefaultBaseInterestRate = 0.0253

	// BaseYieldFraction is the share of the Basiszins applied to the
	// start-of-year value to derive the Basisertrag.
	BaseYieldFraction = 0.7

	// TaxRate is Abgeltungsteuer (25%) plus Solidaritätszuschlag.
	TaxRate = 0.26375

	// EquityExemptionFraction is the taxable share of gains from equity
	// funds after the 30% Teilfreistellung.
	EquityExemptionFraction = 0.7

	// FullExemptionFraction applies to non-equity funds.
	FullExemptionFraction = 1.0
)

// Config holds the immutable input of a projection. Rates are decimals
// (0.07 for 7%).
type Config struct {
	InitialCapital               float64 `json:"initialCapital" yaml:"initialCapital"`
	InitialMonthlyContribution   float64 `json:"initialMonthlyContribution" yaml:"initialMonthlyContribution"`
	Years                        int     `json:"years" yaml:"years"`
	AnnualReturnRate             float64 `json:"annualReturnRate" yaml:"annualReturnRate"`
	AnnualInflationRate          float64 `json:"annualInflationRate" yaml:"annualInflationRate"`
	AnnualContributionGrowthRate float64 `json:"annualContributionGrowthRate" yaml:"annualContributionGrowthRate"`
	TaxFreeAllowance             float64 `json:"taxFreeAllowance" yaml:"taxFreeAllowance"`
	IsEquityFund                 bool    `json:"isEquityFund" yaml:"isEquityFund"`
	BaseInterestRate             float64 `json:"baseInterestRate" yaml:"baseInterestRate"`
}

// DefaultConfig returns the calculator's default savings plan.
func DefaultConfig() Config {
	return Config{
		InitialCapital:             100,
		InitialMonthlyContribution: 100,
		Years:                      30,
		AnnualReturnRate:           0.07,
		AnnualInflationRate:        0.02,
		TaxFreeAllowance:           1000,
		IsEquityFund:               true,
		BaseInterestRate:           DefaultBaseInterestRate,
	}
}

// ExemptionFraction returns the taxable share of fund gains.
func (c Config) ExemptionFraction() float64 {
	if c.IsEquityFund {
		return EquityExemptionFraction
	}
	return FullExemptionFraction
}

// TaxRate returns the flat capital-gains tax rate applied to the config.
func (c Config) TaxRate() float64 {
	return TaxRate
}

// InvalidConfigError reports a configuration value that the engine refuses
// to simulate.
type InvalidConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid projection config: %s = %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks the config and returns an *InvalidConfigError for the
// first offending field.
func (c Config) Validate() error {
	if c.Years < 1 {
		return &InvalidConfigError{Field: "years", Value: float64(c.Years), Reason: "must be at least 1"}
	}

	finite := []struct {
		field string
		value float64
	}{
		{"initialCapital", c.InitialCapital},
		{"initialMonthlyContribution", c.InitialMonthlyContribution},
		{"annualReturnRate", c.AnnualReturnRate},
		{"annualInflationRate", c.AnnualInflationRate},
		{"annualContributionGrowthRate", c.AnnualContributionGrowthRate},
		{"taxFreeAllowance", c.TaxFreeAllowance},
		{"baseInterestRate", c.BaseInterestRate},
	}
	for _, f := range finite {
		if !mathutil.IsFinite(f.value) {
			return &InvalidConfigError{Field: f.field, Value: f.value, Reason: "must be a finite number"}
		}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"initialCapital", c.InitialCapital},
		{"initialMonthlyContribution", c.InitialMonthlyContribution},
		{"taxFreeAllowance", c.TaxFreeAllowance},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return &InvalidConfigError{Field: f.field, Value: f.value, Reason: "must not be negative"}
		}
	}

	aboveMinusOne := []struct {
		field string
		value float64
	}{
		{"annualReturnRate", c.AnnualReturnRate},
		{"annualInflationRate", c.AnnualInflationRate},
		{"annualContributionGrowthRate", c.AnnualContributionGrowthRate},
	}
	for _, f := range aboveMinusOne {
		if f.value <= -1 {
			return &InvalidConfigError{Field: f.field, Value: f.value, Reason: "must be greater than -100%"}
		}
	}

	return nil
}
