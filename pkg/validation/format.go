// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/iwvelando/etf-forecast/pkg/constants"
)

// OutputFormats lists the formats the forecast command can render.
var OutputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV}

// LogFormats lists the encodings accepted for log output.
var LogFormats = []string{"json", "console"}

// ValidateOutputFormat checks format against supported, which defaults to
// OutputFormats when empty. Matching is exact.
func ValidateOutputFormat(format string, supported ...string) error {
	if len(supported) == 0 {
		supported = OutputFormats
	}
	if slices.Contains(supported, format) {
		return nil
	}
	return fmt.Errorf("unsupported format %q, expected one of: %s", format, strings.Join(supported, ", "))
}
