package config

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/pkg/mathutil"
	"github.com/iwvelando/etf-forecast/pkg/projection"
)

// Parameters are the user-facing inputs of a projection. Rates are given in
// percent. Nil fields inherit from the common block and then from
// projection.DefaultConfig.
type Parameters struct {
	InitialCapital         *float64 `yaml:"initialCapital,omitempty" json:"initialCapital,omitempty"`
	MonthlyContribution    *float64 `yaml:"monthlyContribution,omitempty" json:"monthlyContribution,omitempty"`
	Years                  *int     `yaml:"years,omitempty" json:"years,omitempty"`
	AnnualReturnRate       *float64 `yaml:"annualReturnRate,omitempty" json:"annualReturnRate,omitempty"`
	InflationRate          *float64 `yaml:"inflationRate,omitempty" json:"inflationRate,omitempty"`
	ContributionGrowthRate *float64 `yaml:"contributionGrowthRate,omitempty" json:"contributionGrowthRate,omitempty"`
	TaxFreeAllowance       *float64 `yaml:"taxFreeAllowance,omitempty" json:"taxFreeAllowance,omitempty"`
	EquityFund             *bool    `yaml:"equityFund,omitempty" json:"equityFund,omitempty"`
	BaseInterestRate       *float64 `yaml:"baseInterestRate,omitempty" json:"baseInterestRate,omitempty"`
	EstimateWithdrawal     *bool    `yaml:"estimateWithdrawal,omitempty" json:"estimateWithdrawal,omitempty"`
}

// Merge returns a copy of p with every field set in override replacing p's.
func (p Parameters) Merge(override Parameters) Parameters {
	merged := p
	if override.InitialCapital != nil {
		merged.InitialCapital = override.InitialCapital
	}
	if override.MonthlyContribution != nil {
		merged.MonthlyContribution = override.MonthlyContribution
	}
	if override.Years != nil {
		merged.Years = override.Years
	}
	if override.AnnualReturnRate != nil {
		merged.AnnualReturnRate = override.AnnualReturnRate
	}
	if override.InflationRate != nil {
		merged.InflationRate = override.InflationRate
	}
	if override.ContributionGrowthRate != nil {
		merged.ContributionGrowthRate = override.ContributionGrowthRate
	}
	if override.TaxFreeAllowance != nil {
		merged.TaxFreeAllowance = override.TaxFreeAllowance
	}
	if override.EquityFund != nil {
		merged.EquityFund = override.EquityFund
	}
	if override.BaseInterestRate != nil {
		merged.BaseInterestRate = override.BaseInterestRate
	}
	if override.EstimateWithdrawal != nil {
		merged.EstimateWithdrawal = override.EstimateWithdrawal
	}
	return merged
}

// ProjectionConfig converts the parameters into a validated engine config.
func (p Parameters) ProjectionConfig() (projection.Config, error) {
	cfg := projection.DefaultConfig()

	if p.InitialCapital != nil {
		cfg.InitialCapital = *p.InitialCapital
	}
	if p.MonthlyContribution != nil {
		cfg.InitialMonthlyContribution = *p.MonthlyContribution
	}
	if p.Years != nil {
		cfg.Years = *p.Years
	}
	if p.AnnualReturnRate != nil {
		cfg.AnnualReturnRate = mathutil.PercentToDecimal(*p.AnnualReturnRate)
	}
	if p.InflationRate != nil {
		cfg.AnnualInflationRate = mathutil.PercentToDecimal(*p.InflationRate)
	}
	if p.ContributionGrowthRate != nil {
		cfg.AnnualContributionGrowthRate = mathutil.PercentToDecimal(*p.ContributionGrowthRate)
	}
	if p.TaxFreeAllowance != nil {
		cfg.TaxFreeAllowance = *p.TaxFreeAllowance
	}
	if p.EquityFund != nil {
		cfg.IsEquityFund = *p.EquityFund
	}
	if p.BaseInterestRate != nil {
		cfg.BaseInterestRate = mathutil.PercentToDecimal(*p.BaseInterestRate)
	}

	if err := cfg.Validate(); err != nil {
		return projection.Config{}, err
	}
	return cfg, nil
}

// WithdrawalEnabled reports whether a withdrawal estimate was requested.
func (p Parameters) WithdrawalEnabled() bool {
	return p.EstimateWithdrawal != nil && *p.EstimateWithdrawal
}

// Resolve merges the scenario's parameters over the common block and returns
// the engine config.
func (conf *Configuration) Resolve(scenario Scenario) (projection.Config, error) {
	cfg, err := conf.Common.Merge(scenario.Parameters).ProjectionConfig()
	if err != nil {
		return projection.Config{}, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return cfg, nil
}
