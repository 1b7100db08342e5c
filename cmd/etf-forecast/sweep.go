package main

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/internal/sweep"
	"github.com/iwvelando/etf-forecast/pkg/format"
	"github.com/iwvelando/etf-forecast/pkg/mathutil"
	"github.com/iwvelando/etf-forecast/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the configured return/inflation sensitivity grid",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	const op = "main.runSweep"

	conf, logger, err := loadConfiguration(op)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if !conf.Sweep.Enabled() {
		return fmt.Errorf("no sweep grid configured in %s", flagConfig)
	}

	scenario, err := sweepScenario(conf)
	if err != nil {
		return err
	}
	base, err := conf.Resolve(scenario)
	if err != nil {
		return err
	}

	points, err := sweep.Run(cmd.Context(), logger, base, sweep.Grid{
		ReturnRates:    percents(conf.Sweep.ReturnRates),
		InflationRates: percents(conf.Sweep.InflationRates),
		Workers:        conf.Sweep.Workers,
	})
	if err != nil {
		logger.Error("sensitivity sweep failed",
			zap.String("op", op),
			zap.String("scenario", scenario.Name),
			zap.Error(err),
		)
		return err
	}

	output.SweepFormatWith(cmd.OutOrStdout(), scenario.Name, points, format.ForLocale(conf.Output.Locale))
	return nil
}

// sweepScenario returns the scenario named by the sweep block, or the first
// active scenario when none is named.
func sweepScenario(conf *config.Configuration) (config.Scenario, error) {
	if conf.Sweep.Scenario != "" {
		scenario, ok := conf.FindScenario(conf.Sweep.Scenario)
		if !ok {
			return config.Scenario{}, fmt.Errorf("sweep scenario %s not found", conf.Sweep.Scenario)
		}
		return *scenario, nil
	}
	active := conf.ActiveScenarios()
	if len(active) == 0 {
		return config.Scenario{}, fmt.Errorf("no active scenario to sweep")
	}
	return active[0], nil
}

func percents(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	rates := make([]float64, len(values))
	for i, v := range values {
		rates[i] = mathutil.PercentToDecimal(v)
	}
	return rates
}
