package projection

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Abs(b))
}

func TestProjectNoGrowthScenario(t *testing.T) {
	cfg := Config{
		InitialCapital:             100,
		InitialMonthlyContribution: 100,
		Years:                      1,
		TaxFreeAllowance:           1000,
		IsEquityFund:               true,
		BaseInterestRate:           DefaultBaseInterestRate,
	}

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("Project() returned %d snapshots, expected 1", len(snapshots))
	}

	s := snapshots[0]
	if s.Year != 1 {
		t.Errorf("Year = %d, expected 1", s.Year)
	}
	if s.TotalInvested != 1300 {
		t.Errorf("TotalInvested = %v, expected 1300", s.TotalInvested)
	}
	if !approxEqual(s.NominalBalance, 1300) {
		t.Errorf("NominalBalance = %v, expected 1300", s.NominalBalance)
	}
	if s.AccumulatedAdvanceTax != 0 {
		t.Errorf("AccumulatedAdvanceTax = %v, expected 0", s.AccumulatedAdvanceTax)
	}
	if !approxEqual(s.RealValue, 1300) {
		t.Errorf("RealValue = %v, expected 1300", s.RealValue)
	}
}

func TestProjectSingleYearWithTaxes(t *testing.T) {
	cfg := Config{
		InitialCapital:   10000,
		Years:            1,
		AnnualReturnRate: 0.12,
		IsEquityFund:     true,
		BaseInterestRate: DefaultBaseInterestRate,
	}

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	s := snapshots[0]

	balance := 10000 * math.Pow(1.01, 12)
	advanceTax := 10000 * 0.0253 * 0.7 * 0.7 * TaxRate
	exitTax := (balance-10000)*0.7*TaxRate - advanceTax
	net := balance - exitTax - advanceTax

	if !approxEqual(s.NominalBalance, balance) {
		t.Errorf("NominalBalance = %v, expected %v", s.NominalBalance, balance)
	}
	if !approxEqual(s.AdvanceTax, advanceTax) {
		t.Errorf("AdvanceTax = %v, expected %v", s.AdvanceTax, advanceTax)
	}
	if !approxEqual(s.ExitTax, exitTax) {
		t.Errorf("ExitTax = %v, expected %v", s.ExitTax, exitTax)
	}
	if !approxEqual(s.NetValue, net) {
		t.Errorf("NetValue = %v, expected %v", s.NetValue, net)
	}
	if !approxEqual(s.RealValue, net) {
		t.Errorf("RealValue = %v, expected %v with zero inflation", s.RealValue, net)
	}
}

func TestProjectNonEquityFundTaxesFullGain(t *testing.T) {
	equity := Config{InitialCapital: 50000, Years: 5, AnnualReturnRate: 0.06, BaseInterestRate: DefaultBaseInterestRate, IsEquityFund: true}
	bond := equity
	bond.IsEquityFund = false

	equitySnaps, err := Project(equity)
	if err != nil {
		t.Fatalf("Project(equity) error = %v", err)
	}
	bondSnaps, err := Project(bond)
	if err != nil {
		t.Fatalf("Project(bond) error = %v", err)
	}

	e, _ := Final(equitySnaps)
	b, _ := Final(bondSnaps)
	if !approxEqual(e.NominalBalance, b.NominalBalance) {
		t.Errorf("fund type changed nominal balance: %v vs %v", e.NominalBalance, b.NominalBalance)
	}
	if b.NetValue >= e.NetValue {
		t.Errorf("non-equity NetValue %v should be below equity NetValue %v", b.NetValue, e.NetValue)
	}
}

func TestProjectLengthInvariant(t *testing.T) {
	for _, years := range []int{1, 2, 10, 30, 40} {
		cfg := DefaultConfig()
		cfg.Years = years

		snapshots, err := Project(cfg)
		if err != nil {
			t.Fatalf("Project(years=%d) error = %v", years, err)
		}
		if len(snapshots) != years {
			t.Errorf("Project(years=%d) returned %d snapshots", years, len(snapshots))
		}
		for i, s := range snapshots {
			if s.Year != i+1 {
				t.Errorf("snapshot %d has Year %d, expected %d", i, s.Year, i+1)
			}
		}
	}
}

func TestProjectMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 20000
	cfg.TaxFreeAllowance = 0

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		if cur.TotalInvested <= prev.TotalInvested {
			t.Errorf("year %d: TotalInvested %v did not increase from %v", cur.Year, cur.TotalInvested, prev.TotalInvested)
		}
		if cur.AccumulatedAdvanceTax < prev.AccumulatedAdvanceTax {
			t.Errorf("year %d: AccumulatedAdvanceTax decreased from %v to %v", cur.Year, prev.AccumulatedAdvanceTax, cur.AccumulatedAdvanceTax)
		}
	}
	if final, _ := Final(snapshots); final.AccumulatedAdvanceTax <= 0 {
		t.Errorf("expected advance tax to accrue without allowance, got %v", final.AccumulatedAdvanceTax)
	}
}

func TestProjectZeroRateAccumulation(t *testing.T) {
	cfg := Config{
		InitialCapital:             2500,
		InitialMonthlyContribution: 150,
		Years:                      7,
		AnnualInflationRate:        0.02,
		TaxFreeAllowance:           1000,
		IsEquityFund:               true,
		BaseInterestRate:           DefaultBaseInterestRate,
	}

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	final, _ := Final(snapshots)
	expected := 2500.0 + 150.0*7*12
	if !approxEqual(final.NominalBalance, expected) {
		t.Errorf("NominalBalance = %v, expected %v", final.NominalBalance, expected)
	}
	if !approxEqual(final.TotalInvested, expected) {
		t.Errorf("TotalInvested = %v, expected %v", final.TotalInvested, expected)
	}
}

func TestProjectAllowanceShielding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 100000
	cfg.InitialMonthlyContribution = 2000
	cfg.Years = 40
	cfg.AnnualInflationRate = 0.025
	cfg.TaxFreeAllowance = 10000000

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	for _, s := range snapshots {
		if s.AccumulatedAdvanceTax != 0 {
			t.Errorf("year %d: AccumulatedAdvanceTax = %v, expected 0", s.Year, s.AccumulatedAdvanceTax)
		}
		if s.ExitTax != 0 {
			t.Errorf("year %d: ExitTax = %v, expected 0", s.Year, s.ExitTax)
		}
		expected := s.NominalBalance / math.Pow(1.025, float64(s.Year))
		if !approxEqual(s.RealValue, expected) {
			t.Errorf("year %d: RealValue = %v, expected %v", s.Year, s.RealValue, expected)
		}
	}
}

func TestProjectContributionGrowth(t *testing.T) {
	cfg := Config{
		InitialMonthlyContribution:   1000,
		Years:                        10,
		AnnualReturnRate:             0.07,
		AnnualInflationRate:          0.02,
		AnnualContributionGrowthRate: 0.02,
		TaxFreeAllowance:             1000,
		IsEquityFund:                 true,
		BaseInterestRate:             DefaultBaseInterestRate,
	}

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if snapshots[0].MonthlyContribution != 1000 {
		t.Errorf("year 1 MonthlyContribution = %v, expected 1000", snapshots[0].MonthlyContribution)
	}
	final, _ := Final(snapshots)
	expected := 1000 * math.Pow(1.02, 9)
	if !approxEqual(final.MonthlyContribution, expected) {
		t.Errorf("year 10 MonthlyContribution = %v, expected %v", final.MonthlyContribution, expected)
	}

	// Each year's deposits are twelve payments of that year's contribution.
	invested := 0.0
	for year := 0; year < 10; year++ {
		invested += 12 * 1000 * math.Pow(1.02, float64(year))
	}
	if !approxEqual(final.TotalInvested, invested) {
		t.Errorf("TotalInvested = %v, expected %v", final.TotalInvested, invested)
	}
}

func TestProjectWithoutGrowthKeepsContributionFlat(t *testing.T) {
	cfg := DefaultConfig()

	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for _, s := range snapshots {
		if s.MonthlyContribution != cfg.InitialMonthlyContribution {
			t.Errorf("year %d: MonthlyContribution = %v, expected constant %v", s.Year, s.MonthlyContribution, cfg.InitialMonthlyContribution)
		}
	}
}

func TestProjectDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	first, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	second, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("year %d differs between runs", i+1)
		}
	}
}

func TestProjectInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Zero years", func(c *Config) { c.Years = 0 }, "years"},
		{"Negative years", func(c *Config) { c.Years = -3 }, "years"},
		{"Negative capital", func(c *Config) { c.InitialCapital = -1 }, "initialCapital"},
		{"Negative contribution", func(c *Config) { c.InitialMonthlyContribution = -50 }, "initialMonthlyContribution"},
		{"Negative allowance", func(c *Config) { c.TaxFreeAllowance = -1000 }, "taxFreeAllowance"},
		{"Inflation of minus 100%", func(c *Config) { c.AnnualInflationRate = -1 }, "annualInflationRate"},
		{"Return below minus 100%", func(c *Config) { c.AnnualReturnRate = -1.5 }, "annualReturnRate"},
		{"Growth of minus 100%", func(c *Config) { c.AnnualContributionGrowthRate = -1 }, "annualContributionGrowthRate"},
		{"NaN return", func(c *Config) { c.AnnualReturnRate = math.NaN() }, "annualReturnRate"},
		{"Infinite base rate", func(c *Config) { c.BaseInterestRate = math.Inf(1) }, "baseInterestRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			snapshots, err := Project(cfg)
			if err == nil {
				t.Fatalf("Project() expected error but got none")
			}
			if snapshots != nil {
				t.Errorf("Project() returned %d snapshots alongside error", len(snapshots))
			}

			var invalid *InvalidConfigError
			if !errors.As(err, &invalid) {
				t.Fatalf("Project() error = %T, expected *InvalidConfigError", err)
			}
			if invalid.Field != tt.field {
				t.Errorf("InvalidConfigError.Field = %s, expected %s", invalid.Field, tt.field)
			}
		})
	}
}

func TestProjectNegativeBaseRateSuppressesAdvanceTax(t *testing.T) {
	// Rising market and no allowance: only the Basiszins can keep the
	// advance tax at zero.
	cfg := DefaultConfig()
	cfg.InitialCapital = 100000
	cfg.AnnualReturnRate = 0.07
	cfg.TaxFreeAllowance = 0
	cfg.Years = 5

	positive, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if final, _ := Final(positive); final.AccumulatedAdvanceTax <= 0 {
		t.Fatalf("expected advance tax with a positive Basiszins, got %v", final.AccumulatedAdvanceTax)
	}

	cfg.BaseInterestRate = -0.0045
	snapshots, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for _, s := range snapshots {
		if s.NominalBalance <= s.TotalInvested {
			t.Fatalf("year %d: expected gains, balance %v invested %v", s.Year, s.NominalBalance, s.TotalInvested)
		}
		if s.AccumulatedAdvanceTax != 0 {
			t.Errorf("year %d: advance tax %v charged with a negative Basiszins", s.Year, s.AccumulatedAdvanceTax)
		}
	}
}

func TestFinal(t *testing.T) {
	if _, ok := Final(nil); ok {
		t.Errorf("Final(nil) ok = true, expected false")
	}
	s, ok := Final([]YearSnapshot{{Year: 1}, {Year: 2}})
	if !ok || s.Year != 2 {
		t.Errorf("Final() = %+v, %v; expected year 2", s, ok)
	}
}
