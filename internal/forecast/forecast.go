// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/pkg/optimization"
	"github.com/iwvelando/etf-forecast/pkg/projection"
	"github.com/iwvelando/etf-forecast/pkg/withdrawal"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name      string                    `json:"name"`
	Config    projection.Config         `json:"config"`
	Snapshots []projection.YearSnapshot `json:"snapshots"`
	Metrics   Metrics                   `json:"metrics"`
}

// Metrics captures derived values attached to a scenario forecast.
type Metrics struct {
	Withdrawal    *withdrawal.Estimate   `json:"withdrawal,omitempty"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// Final returns the last yearly snapshot.
func (f Forecast) Final() (projection.YearSnapshot, bool) {
	return projection.Final(f.Snapshots)
}

// GetForecast processes the Forecasts for all Scenarios.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		result, err := forecastScenario(conf, scenario)
		if err != nil {
			return results, err
		}

		final, _ := result.Final()
		logger.Debug("scenario projected",
			zap.String("op", "forecast.GetForecast"),
			zap.String("scenario", scenario.Name),
			zap.Int("years", len(result.Snapshots)),
			zap.Float64("finalNominal", final.NominalBalance),
			zap.Float64("finalReal", final.RealValue),
		)
		results = append(results, result)
	}

	return results, nil
}

// GetScenarioForecast projects a single named scenario regardless of whether
// it is active.
func GetScenarioForecast(conf config.Configuration, name string) (Forecast, error) {
	scenario, ok := conf.FindScenario(name)
	if !ok {
		return Forecast{}, fmt.Errorf("scenario %s not found", name)
	}
	return forecastScenario(conf, *scenario)
}

// Project runs a single parameter set outside of any scenario file.
func Project(name string, params config.Parameters) (Forecast, error) {
	cfg, err := params.ProjectionConfig()
	if err != nil {
		return Forecast{}, err
	}
	return build(name, cfg, params.WithdrawalEnabled())
}

func forecastScenario(conf config.Configuration, scenario config.Scenario) (Forecast, error) {
	cfg, err := conf.Resolve(scenario)
	if err != nil {
		return Forecast{}, err
	}
	params := conf.Common.Merge(scenario.Parameters)
	return build(scenario.Name, cfg, params.WithdrawalEnabled())
}

func build(name string, cfg projection.Config, estimateWithdrawal bool) (Forecast, error) {
	snapshots, err := projection.Project(cfg)
	if err != nil {
		return Forecast{}, fmt.Errorf("scenario %s: %w", name, err)
	}

	result := Forecast{
		Name:      name,
		Config:    cfg,
		Snapshots: snapshots,
	}
	if estimateWithdrawal {
		if final, ok := result.Final(); ok {
			estimate := withdrawal.FromSnapshot(final, cfg)
			result.Metrics.Withdrawal = &estimate
		}
	}
	return result, nil
}
