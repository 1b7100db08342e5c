// Package config defines the data structures related to configuration and
// includes functions for loading the config and resolving scenarios into
// projection inputs.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for etf-forecast.
type Configuration struct {
	Common    Parameters    `yaml:"common"`
	Scenarios []Scenario    `yaml:"scenarios"`
	Sweep     SweepConfig   `yaml:"sweep,omitempty"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
	Locale string `yaml:"locale,omitempty"` // en, de; amounts in pretty output
}

// Scenario is a named variation of the common parameters.
type Scenario struct {
	Name       string      `yaml:"name"`
	Active     bool        `yaml:"active"`
	Parameters Parameters  `yaml:"parameters,omitempty"`
	Target     *TargetGoal `yaml:"target,omitempty"`
}

// TargetGoal asks the optimizer for the monthly contribution that reaches
// RealValue at the end of the horizon.
type TargetGoal struct {
	RealValue              float64 `yaml:"realValue"`
	MaxMonthlyContribution float64 `yaml:"maxMonthlyContribution,omitempty"`
	Tolerance              float64 `yaml:"tolerance,omitempty"`
	MaxIterations          int     `yaml:"maxIterations,omitempty"`
}

// SweepConfig describes a sensitivity grid over return and inflation
// percentages for one scenario.
type SweepConfig struct {
	Scenario       string    `yaml:"scenario,omitempty"`
	ReturnRates    []float64 `yaml:"returnRates,omitempty"`
	InflationRates []float64 `yaml:"inflationRates,omitempty"`
	Workers        int       `yaml:"workers,omitempty"`
}

// Enabled reports whether a sweep grid was configured.
func (s SweepConfig) Enabled() bool {
	return len(s.ReturnRates) > 0 || len(s.InflationRates) > 0
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ActiveScenarios returns the scenarios that take part in a forecast.
func (conf *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range conf.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// FindScenario returns the scenario with the given name.
func (conf *Configuration) FindScenario(name string) (*Scenario, bool) {
	for i := range conf.Scenarios {
		if conf.Scenarios[i].Name == name {
			return &conf.Scenarios[i], true
		}
	}
	return nil, false
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(conf.ActiveScenarios()) == 0 {
		warnings = append(warnings, "no active scenarios configured")
	}

	seen := make(map[string]bool)
	for i, scenario := range conf.Scenarios {
		if strings.TrimSpace(scenario.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("scenario %d has no name", i))
			continue
		}
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("scenario name %q is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		merged := conf.Common.Merge(scenario.Parameters)
		if merged.Years != nil && *merged.Years > constants.MaxReasonableYears {
			warnings = append(warnings, fmt.Sprintf("scenario %s: horizon of %d years is unusually long", scenario.Name, *merged.Years))
		}
		if merged.AnnualReturnRate != nil && *merged.AnnualReturnRate > constants.MaxReasonableReturnPercent {
			warnings = append(warnings, fmt.Sprintf("scenario %s: annual return of %.2f%% is unusually high", scenario.Name, *merged.AnnualReturnRate))
		}
		if scenario.Target != nil && scenario.Target.RealValue <= 0 {
			warnings = append(warnings, fmt.Sprintf("scenario %s: target realValue must be positive and will be ignored", scenario.Name))
		}
	}

	if conf.Sweep.Enabled() && conf.Sweep.Scenario != "" {
		if _, ok := conf.FindScenario(conf.Sweep.Scenario); !ok {
			warnings = append(warnings, fmt.Sprintf("sweep references unknown scenario %q", conf.Sweep.Scenario))
		}
	}

	return warnings
}
