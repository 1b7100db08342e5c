package forecast_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/internal/forecast"
	"github.com/iwvelando/etf-forecast/pkg/projection"
	"github.com/iwvelando/etf-forecast/pkg/testutil"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestGetForecastSkipsInactiveScenarios(t *testing.T) {
	conf := config.Configuration{
		Common: config.Parameters{Years: intPtr(5)},
		Scenarios: []config.Scenario{
			{Name: "Active", Active: true},
			{Name: "Inactive", Active: false},
		},
	}

	results, err := forecast.GetForecast(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 forecast, got %d", len(results))
	}
	if testutil.FindScenario(results, "Inactive") != nil {
		t.Error("inactive scenario should not be forecast")
	}
	active := testutil.FindScenario(results, "Active")
	if active == nil {
		t.Fatal("expected forecast for scenario Active")
	}
	if len(active.Snapshots) != 5 {
		t.Errorf("expected 5 snapshots, got %d", len(active.Snapshots))
	}
}

func TestGetForecastMatchesEngine(t *testing.T) {
	conf := config.Configuration{
		Common: config.Parameters{
			InitialCapital:      floatPtr(1000),
			MonthlyContribution: floatPtr(250),
			Years:               intPtr(12),
			AnnualReturnRate:    floatPtr(6),
			InflationRate:       floatPtr(2.5),
		},
		Scenarios: []config.Scenario{
			{Name: "Base", Active: true},
			{Name: "Dynamic", Active: true, Parameters: config.Parameters{ContributionGrowthRate: floatPtr(3)}},
		},
	}

	results, err := forecast.GetForecast(nil, conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	for _, scenario := range conf.Scenarios {
		cfg, err := conf.Resolve(scenario)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		expected, err := projection.Project(cfg)
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}

		result := testutil.FindScenario(results, scenario.Name)
		if result == nil {
			t.Fatalf("missing forecast for %s", scenario.Name)
		}
		if len(result.Snapshots) != len(expected) {
			t.Fatalf("%s: got %d snapshots, expected %d", scenario.Name, len(result.Snapshots), len(expected))
		}
		for i := range expected {
			if result.Snapshots[i] != expected[i] {
				t.Errorf("%s year %d: got %+v, expected %+v", scenario.Name, i+1, result.Snapshots[i], expected[i])
			}
		}
	}

	base := testutil.FindScenario(results, "Base")
	dynamic := testutil.FindScenario(results, "Dynamic")
	baseFinal, _ := base.Final()
	dynamicFinal, _ := dynamic.Final()
	if dynamicFinal.TotalInvested <= baseFinal.TotalInvested {
		t.Errorf("contribution growth should raise total invested: %v <= %v", dynamicFinal.TotalInvested, baseFinal.TotalInvested)
	}
}

func TestGetForecastWithdrawalMetric(t *testing.T) {
	conf := config.Configuration{
		Common: config.Parameters{Years: intPtr(10)},
		Scenarios: []config.Scenario{
			{Name: "With", Active: true, Parameters: config.Parameters{EstimateWithdrawal: boolPtr(true)}},
			{Name: "Without", Active: true},
		},
	}

	results, err := forecast.GetForecast(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	with := testutil.FindScenario(results, "With")
	if with.Metrics.Withdrawal == nil {
		t.Fatal("expected withdrawal estimate")
	}
	if with.Metrics.Withdrawal.NominalNet <= 0 || with.Metrics.Withdrawal.RealNet <= 0 {
		t.Errorf("expected positive withdrawal estimate, got %+v", with.Metrics.Withdrawal)
	}
	if without := testutil.FindScenario(results, "Without"); without.Metrics.Withdrawal != nil {
		t.Errorf("unexpected withdrawal estimate %+v", without.Metrics.Withdrawal)
	}
}

func TestGetForecastInvalidScenario(t *testing.T) {
	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "Broken", Active: true, Parameters: config.Parameters{Years: intPtr(0)}},
		},
	}

	_, err := forecast.GetForecast(zap.NewNop(), conf)
	var invalid *projection.InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("GetForecast() error = %v, expected *InvalidConfigError", err)
	}
}

func TestGetScenarioForecast(t *testing.T) {
	conf, err := config.LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	result, err := forecast.GetScenarioForecast(*conf, "Bond fund")
	if err != nil {
		t.Fatalf("GetScenarioForecast() error = %v", err)
	}
	if result.Config.IsEquityFund {
		t.Error("expected bond fund scenario to be non-equity")
	}
	if len(result.Snapshots) != 30 {
		t.Errorf("expected 30 snapshots, got %d", len(result.Snapshots))
	}

	if _, err := forecast.GetScenarioForecast(*conf, "Unknown"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestProject(t *testing.T) {
	result, err := forecast.Project("adhoc", config.Parameters{Years: intPtr(3), EstimateWithdrawal: boolPtr(true)})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if result.Name != "adhoc" || len(result.Snapshots) != 3 {
		t.Errorf("unexpected forecast %+v", result)
	}
	if result.Metrics.Withdrawal == nil {
		t.Error("expected withdrawal estimate")
	}
}
