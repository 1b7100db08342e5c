// Package withdrawal estimates a sustainable monthly payout from the final
// value of a projection using a fixed safe withdrawal rate.
package withdrawal

import (
	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/iwvelando/etf-forecast/pkg/projection"
)

// SafeWithdrawalRate is the share of the portfolio withdrawn per year.
const SafeWithdrawalRate = 0.04

// Estimate holds the net monthly payout in nominal and in today's money.
type Estimate struct {
	NominalNet float64 `json:"nominalNet"`
	RealNet    float64 `json:"realNet"`
}

// EstimateMonthlyWithdrawal applies the safe withdrawal rate to both final
// values and deducts tax on the taxable share of each payout.
func EstimateMonthlyWithdrawal(finalNominal, finalReal, taxRate, exemptionFraction float64) Estimate {
	effectiveTax := taxRate * exemptionFraction
	return Estimate{
		NominalNet: monthlyNet(finalNominal, effectiveTax),
		RealNet:    monthlyNet(finalReal, effectiveTax),
	}
}

// FromSnapshot estimates the payout for the end state of a projection.
func FromSnapshot(snapshot projection.YearSnapshot, cfg projection.Config) Estimate {
	return EstimateMonthlyWithdrawal(snapshot.NominalBalance, snapshot.RealValue, cfg.TaxRate(), cfg.ExemptionFraction())
}

func monthlyNet(value, effectiveTax float64) float64 {
	return value * SafeWithdrawalRate / constants.MonthsPerYear * (1 - effectiveTax)
}
