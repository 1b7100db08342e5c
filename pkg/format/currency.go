// Package format renders euro amounts and rates for human-readable output.
package format

import (
	"strings"

	"github.com/iwvelando/etf-forecast/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Languages that write the euro sign after the amount ("1.234,57 €").
var symbolAfterAmount = map[string]bool{
	"de": true,
	"fr": true,
	"es": true,
	"it": true,
}

// Formatter prints amounts with the digit grouping of one locale.
type Formatter struct {
	printer     *message.Printer
	symbolAfter bool
}

// English is the default formatter ("€1,234.57").
var English = ForLocale("en")

// ForLocale returns the formatter for a BCP 47 name such as "en" or "de-DE".
// Empty or unparsable names fall back to English.
func ForLocale(name string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(name))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	base, _ := tag.Base()
	return Formatter{
		printer:     message.NewPrinter(tag),
		symbolAfter: symbolAfterAmount[base.String()],
	}
}

// Currency rounds to cents and adds the euro sign on the locale's side.
func (f Formatter) Currency(amount float64) string {
	sign, digits := f.split(amount)
	if f.symbolAfter {
		return sign + digits + " €"
	}
	return sign + "€" + digits
}

// NumericCurrency is Currency without the euro sign.
func (f Formatter) NumericCurrency(amount float64) string {
	sign, digits := f.split(amount)
	return sign + digits
}

// Percent renders a decimal rate as a percentage with two decimals.
func (f Formatter) Percent(rate float64) string {
	return f.printer.Sprintf("%.2f%%", mathutil.DecimalToPercent(rate))
}

func (f Formatter) split(amount float64) (string, string) {
	rounded := mathutil.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign, f.printer.Sprintf("%.2f", rounded)
}

// Currency formats amount with the English formatter (e.g., "-€1,234.56").
func Currency(amount float64) string {
	return English.Currency(amount)
}

// NumericCurrency formats amount without a symbol (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return English.NumericCurrency(amount)
}

// Percent renders a decimal rate as a percentage ("7.00%").
func Percent(rate float64) string {
	return English.Percent(rate)
}
