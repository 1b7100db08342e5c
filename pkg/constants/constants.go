// Package constants provides shared constants for the etf-forecast application.
package constants

// Calendar and currency constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variables that override config keys
	EnvPrefix = "ETF_FORECAST"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = "15s"
)

// Sanity thresholds used for configuration warnings
const (
	// MaxReasonableYears is the horizon above which a warning is emitted
	MaxReasonableYears = 60

	// MaxReasonableReturnPercent is the annual return above which a warning is emitted
	MaxReasonableReturnPercent = 15.0

	// DefaultSweepWorkers bounds concurrent projections in a sensitivity sweep
	DefaultSweepWorkers = 4
)
