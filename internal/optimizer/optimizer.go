// Package optimizer solves for the monthly contribution that lets a scenario
// reach a target real value at the end of its horizon.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/etf-forecast/internal/config"
	"github.com/iwvelando/etf-forecast/internal/forecast"
	"github.com/iwvelando/etf-forecast/pkg/format"
	"github.com/iwvelando/etf-forecast/pkg/optimization"
	"github.com/iwvelando/etf-forecast/pkg/projection"
	"go.uber.org/zap"
)

const (
	// FieldMonthlyContribution is the only field the optimizer adjusts.
	FieldMonthlyContribution = "monthlyContribution"

	defaultTolerance     = 0.01
	defaultMaxIterations = 200
	maxBoundDoublings    = 60
)

// Runner executes the optimizer directives of a configuration.
type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

// Result summarizes optimizer adjustments keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the provided forecast results.
func (r Result) Apply(forecasts []forecast.Forecast) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range forecasts {
		summaries, ok := r.Summaries[forecasts[i].Name]
		if !ok {
			continue
		}
		forecasts[i].Metrics.Optimizations = append(forecasts[i].Metrics.Optimizations, summaries...)
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run solves every active scenario target and writes the solved monthly
// contribution back into the scenario parameters.
func (r *Runner) Run() (*Result, error) {
	summaries := make(map[string][]optimization.Summary)

	for i := range r.conf.Scenarios {
		scenario := &r.conf.Scenarios[i]
		if !scenario.Active || scenario.Target == nil || scenario.Target.RealValue <= 0 {
			continue
		}

		base, err := r.conf.Resolve(*scenario)
		if err != nil {
			return nil, err
		}

		summary, err := Solve(base, *scenario.Target)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		summary.Scenario = scenario.Name

		if summary.Converged {
			solved := summary.Value
			scenario.Parameters.MonthlyContribution = &solved
		}
		summaries[scenario.Name] = append(summaries[scenario.Name], summary)

		r.logger.Info("optimizer solved monthly contribution",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", scenario.Name),
			zap.Float64("original", summary.Original),
			zap.Float64("optimized", summary.Value),
			zap.Float64("target", summary.Target),
			zap.Float64("achieved", summary.Achieved),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

// Solve bisects the smallest initial monthly contribution whose final real
// value reaches goal.RealValue. The final real value grows monotonically with
// the contribution.
func Solve(base projection.Config, goal config.TargetGoal) (optimization.Summary, error) {
	tolerance := goal.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	maxIterations := goal.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	summary := optimization.Summary{
		Field:    FieldMonthlyContribution,
		Original: base.InitialMonthlyContribution,
		Target:   goal.RealValue,
	}

	lowerReal, err := finalReal(base, 0)
	if err != nil {
		return summary, err
	}
	if lowerReal >= goal.RealValue {
		summary.Achieved = lowerReal
		summary.Converged = true
		summary.Notes = []string{"initial capital alone reaches the target"}
		return summary, nil
	}

	upper, upperReal, err := upperBound(base, goal)
	if err != nil {
		return summary, err
	}
	if upperReal < goal.RealValue {
		summary.Value = upper
		summary.Achieved = upperReal
		summary.Notes = []string{fmt.Sprintf(
			"unable to reach %s with a monthly contribution of up to %s",
			format.Currency(goal.RealValue), format.Currency(upper),
		)}
		return summary, nil
	}

	lower := 0.0
	achieved := upperReal
	iterations := 0
	for iterations < maxIterations && upper-lower > tolerance {
		mid := lower + (upper-lower)/2
		midReal, err := finalReal(base, mid)
		if err != nil {
			return summary, err
		}
		iterations++
		if midReal >= goal.RealValue {
			upper = mid
			achieved = midReal
		} else {
			lower = mid
		}
	}

	summary.Value = upper
	summary.Achieved = achieved
	summary.Iterations = iterations
	summary.Converged = true
	return summary, nil
}

// upperBound returns a feasible contribution, either the configured maximum
// or one found by doubling.
func upperBound(base projection.Config, goal config.TargetGoal) (float64, float64, error) {
	if goal.MaxMonthlyContribution > 0 {
		realValue, err := finalReal(base, goal.MaxMonthlyContribution)
		return goal.MaxMonthlyContribution, realValue, err
	}

	upper := base.InitialMonthlyContribution
	if upper <= 0 {
		upper = 100
	}
	var realValue float64
	for i := 0; ; i++ {
		var err error
		realValue, err = finalReal(base, upper)
		if err != nil {
			return 0, 0, err
		}
		if realValue >= goal.RealValue || i == maxBoundDoublings-1 {
			break
		}
		upper *= 2
	}
	return upper, realValue, nil
}

func finalReal(base projection.Config, contribution float64) (float64, error) {
	cfg := base
	cfg.InitialMonthlyContribution = contribution
	snapshots, err := projection.Project(cfg)
	if err != nil {
		return 0, err
	}
	final, _ := projection.Final(snapshots)
	return final.RealValue, nil
}
