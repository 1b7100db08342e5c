package projection

import (
	"math"

	"github.com/iwvelando/etf-forecast/pkg/mathutil"
)

// AdvanceTaxBase returns the Vorabpauschale for one year: the lesser of the
// actual gain and the Basisertrag, never negative.
func AdvanceTaxBase(valueAtYearStart, balance, baseInterestRate float64) float64 {
	actualGain := balance - valueAtYearStart
	baseYield := valueAtYearStart * baseInterestRate * BaseYieldFraction
	return mathutil.NonNegative(math.Min(actualGain, baseYield))
}

// TaxableAmount applies the partial exemption and the annual allowance.
// The allowance is consumed fresh on every call.
func TaxableAmount(amount, exemptionFraction, allowance float64) float64 {
	return mathutil.NonNegative(amount*exemptionFraction - allowance)
}

// ExitTax is the tax due if the position were sold now, net of every advance
// tax already paid.
func ExitTax(balance, totalInvested, exemptionFraction, allowance, accumulatedAdvanceTax float64) float64 {
	taxable := TaxableAmount(balance-totalInvested, exemptionFraction, allowance)
	return mathutil.NonNegative(taxable*TaxRate - accumulatedAdvanceTax)
}

// Discount deflates value by year years of compounded inflation.
func Discount(value, inflationRate float64, year int) float64 {
	return value / math.Pow(1+inflationRate, float64(year))
}
