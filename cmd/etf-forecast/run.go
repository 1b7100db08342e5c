package main

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/internal/forecast"
	"github.com/iwvelando/etf-forecast/internal/optimizer"
	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/iwvelando/etf-forecast/pkg/format"
	"github.com/iwvelando/etf-forecast/pkg/output"
	"github.com/iwvelando/etf-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagOutputFormat string
	flagOptimize     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Forecast every active scenario of the configuration file",
	RunE:  runForecast,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&flagOutputFormat, "output-format", "", "type of output override: pretty, csv")
		c.Flags().BoolVar(&flagOptimize, "optimize", false, "solve scenario targets before forecasting")
	}
	rootCmd.AddCommand(runCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	const op = "main.runForecast"

	conf, logger, err := loadConfiguration(op)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if flagOutputFormat != "" {
		outputFormat = flagOutputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	var optimized *optimizer.Result
	if flagOptimize {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			return fmt.Errorf("failed to initialize optimizer: %w", err)
		}
		optimized, err = runner.Run()
		if err != nil {
			logger.Error("optimizer execution failed",
				zap.String("op", op),
				zap.Error(err),
			)
			return err
		}
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Error("failed to compute forecast",
			zap.String("op", op),
			zap.Error(err),
		)
		return err
	}
	if optimized != nil {
		optimized.Apply(results)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormatWith(cmd.OutOrStdout(), results, format.ForLocale(conf.Output.Locale))
	case constants.OutputFormatCSV:
		return output.CsvFormat(cmd.OutOrStdout(), results)
	}
	return nil
}
