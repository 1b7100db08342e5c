package projection

import (
	"github.com/iwvelando/etf-forecast/pkg/constants"
)

// YearSnapshot is the state of the plan at the end of a year.
type YearSnapshot struct {
	Year                  int     `json:"year"`
	NominalBalance        float64 `json:"nominalBalance"`
	NetValue              float64 `json:"netValue"`
	RealValue             float64 `json:"realValue"`
	TotalInvested         float64 `json:"totalInvested"`
	MonthlyContribution   float64 `json:"monthlyContribution"`
	AdvanceTax            float64 `json:"advanceTax"`
	AccumulatedAdvanceTax float64 `json:"accumulatedAdvanceTax"`
	ExitTax               float64 `json:"exitTax"`
}

// simulation is the mutable state of a single Project call.
type simulation struct {
	cfg                   Config
	exemption             float64
	balance               float64
	totalInvested         float64
	accumulatedAdvanceTax float64
	contribution          float64
	valueAtYearStart      float64
}

// Project runs the month-by-month simulation and returns one snapshot per
// year. An invalid config yields an *InvalidConfigError and no snapshots.
func Project(cfg Config) ([]YearSnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sim := &simulation{
		cfg:           cfg,
		exemption:     cfg.ExemptionFraction(),
		balance:       cfg.InitialCapital,
		totalInvested: cfg.InitialCapital,
		contribution:  cfg.InitialMonthlyContribution,
	}

	monthlyRate := cfg.AnnualReturnRate / constants.MonthsPerYear
	months := cfg.Years * constants.MonthsPerYear
	snapshots := make([]YearSnapshot, 0, cfg.Years)

	for m := 1; m <= months; m++ {
		if (m-1)%constants.MonthsPerYear == 0 {
			if m > 1 {
				sim.contribution *= 1 + cfg.AnnualContributionGrowthRate
			}
			// Captured before this month's growth.
			sim.valueAtYearStart = sim.balance
		}

		sim.balance = sim.balance*(1+monthlyRate) + sim.contribution
		sim.totalInvested += sim.contribution

		if m%constants.MonthsPerYear == 0 {
			snapshots = append(snapshots, sim.settle(m/constants.MonthsPerYear))
		}
	}

	return snapshots, nil
}

// settle books the year's advance tax and values the position as if sold.
func (s *simulation) settle(year int) YearSnapshot {
	base := AdvanceTaxBase(s.valueAtYearStart, s.balance, s.cfg.BaseInterestRate)
	advanceTax := TaxableAmount(base, s.exemption, s.cfg.TaxFreeAllowance) * TaxRate
	s.accumulatedAdvanceTax += advanceTax

	exitTax := ExitTax(s.balance, s.totalInvested, s.exemption, s.cfg.TaxFreeAllowance, s.accumulatedAdvanceTax)
	netValue := s.balance - exitTax - s.accumulatedAdvanceTax

	return YearSnapshot{
		Year:                  year,
		NominalBalance:        s.balance,
		NetValue:              netValue,
		RealValue:             Discount(netValue, s.cfg.AnnualInflationRate, year),
		TotalInvested:         s.totalInvested,
		MonthlyContribution:   s.contribution,
		AdvanceTax:            advanceTax,
		AccumulatedAdvanceTax: s.accumulatedAdvanceTax,
		ExitTax:               exitTax,
	}
}

// Final returns the last snapshot of a projection.
func Final(snapshots []YearSnapshot) (YearSnapshot, bool) {
	if len(snapshots) == 0 {
		return YearSnapshot{}, false
	}
	return snapshots[len(snapshots)-1], true
}
