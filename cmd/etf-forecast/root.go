package main

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "etf-forecast",
	Short: "Project an ETF savings plan under German fund taxation",
	Long: "Simulate monthly ETF savings with Vorabpauschale, exit tax and inflation.\n" +
		"Without a subcommand the scenarios of the configuration file are forecast.",
	SilenceUsage: true,
	RunE:         runForecast,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// loadConfiguration is the shared startup path of the file-driven commands:
// read the configuration, build the logger and report warnings.
func loadConfiguration(op string) (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", flagConfig, err)
	}

	logger, err := initializeLogger(conf.Logging, flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", op),
		)
	}
	return conf, logger, nil
}
