// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/etf-forecast/internal/forecast"
	"github.com/iwvelando/etf-forecast/internal/sweep"
	"github.com/iwvelando/etf-forecast/pkg/format"
	"github.com/iwvelando/etf-forecast/pkg/mathutil"
)

var csvHeader = []string{
	"scenario", "year", "nominal", "after tax", "real value", "invested",
	"monthly contribution", "advance tax", "accumulated advance tax", "exit tax",
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []forecast.Forecast) {
	PrettyFormatWith(w, results, format.English)
}

// PrettyFormatWith is PrettyFormat with the amounts printed by f.
func PrettyFormatWith(w io.Writer, results []forecast.Forecast, f format.Formatter) {
	for i, result := range results {
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if final, ok := result.Final(); ok {
			_, _ = fmt.Fprintf(w, "Future purchasing power (real): %s\n", f.Currency(final.RealValue))
		}
		_, _ = fmt.Fprintf(w, "%-4s | %16s | %16s | %16s | %16s | %12s\n",
			"Year", "Nominal", "After Tax", "Real Value", "Invested", "Monthly")
		_, _ = fmt.Fprintf(w, "%-4s | %16s | %16s | %16s | %16s | %12s\n",
			"____", "_______", "_________", "__________", "________", "_______")
		for _, s := range result.Snapshots {
			_, _ = fmt.Fprintf(w, "%-4d | %16s | %16s | %16s | %16s | %12s\n",
				s.Year,
				f.Currency(s.NominalBalance),
				f.Currency(s.NetValue),
				f.Currency(s.RealValue),
				f.Currency(s.TotalInvested),
				f.Currency(s.MonthlyContribution),
			)
		}

		if est := result.Metrics.Withdrawal; est != nil {
			_, _ = fmt.Fprintf(w, "Monthly withdrawal at 4%%: %s net nominal, %s net in today's money\n",
				f.Currency(est.NominalNet), f.Currency(est.RealNet))
		}
		for _, opt := range result.Metrics.Optimizations {
			if opt.Converged {
				_, _ = fmt.Fprintf(w, "Optimizer: %s of %s reaches a real value of %s (target %s)\n",
					opt.Field, f.Currency(opt.Value), f.Currency(opt.Achieved), f.Currency(opt.Target))
			} else {
				_, _ = fmt.Fprintf(w, "Optimizer: target %s not reached, short by %s\n",
					f.Currency(opt.Target), f.Currency(opt.Shortfall()))
			}
			for _, note := range opt.Notes {
				_, _ = fmt.Fprintf(w, "  note: %s\n", note)
			}
		}
		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes every snapshot of every scenario in comma-separated value
// format. Values are rounded to cents.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		for _, s := range result.Snapshots {
			record := []string{
				result.Name,
				strconv.Itoa(s.Year),
				money(s.NominalBalance),
				money(s.NetValue),
				money(s.RealValue),
				money(s.TotalInvested),
				money(s.MonthlyContribution),
				money(s.AdvanceTax),
				money(s.AccumulatedAdvanceTax),
				money(s.ExitTax),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV representation of the results.
func CsvString(results []forecast.Forecast) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return ""
	}
	return buf.String()
}

// SweepFormat writes a sensitivity grid as a table.
func SweepFormat(w io.Writer, name string, points []sweep.Point) {
	SweepFormatWith(w, name, points, format.English)
}

// SweepFormatWith is SweepFormat with the amounts printed by f.
func SweepFormatWith(w io.Writer, name string, points []sweep.Point, f format.Formatter) {
	_, _ = fmt.Fprintf(w, "--- Sensitivity sweep for scenario %s ---\n", name)
	_, _ = fmt.Fprintf(w, "%8s | %9s | %16s | %16s | %16s\n", "Return", "Inflation", "Nominal", "After Tax", "Real Value")
	_, _ = fmt.Fprintf(w, "%8s | %9s | %16s | %16s | %16s\n", "______", "_________", "_______", "_________", "__________")
	for _, pt := range points {
		_, _ = fmt.Fprintf(w, "%8s | %9s | %16s | %16s | %16s\n",
			f.Percent(pt.ReturnRate),
			f.Percent(pt.InflationRate),
			f.Currency(pt.FinalNominal),
			f.Currency(pt.FinalNet),
			f.Currency(pt.FinalReal),
		)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}
