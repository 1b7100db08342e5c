// Package sweep evaluates a projection across a grid of return and inflation
// assumptions for sensitivity analysis.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/etf-forecast/pkg/constants"
	"github.com/iwvelando/etf-forecast/pkg/projection"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Grid lists the decimal rates to combine. An empty axis keeps the base
// config's rate.
type Grid struct {
	ReturnRates    []float64
	InflationRates []float64
	Workers        int
}

// Point is the end state of one grid cell.
type Point struct {
	ReturnRate    float64 `json:"returnRate"`
	InflationRate float64 `json:"inflationRate"`
	FinalNominal  float64 `json:"finalNominal"`
	FinalNet      float64 `json:"finalNet"`
	FinalReal     float64 `json:"finalReal"`
	TotalInvested float64 `json:"totalInvested"`
	AdvanceTax    float64 `json:"advanceTax"`
}

// Run projects every grid combination concurrently. Points are returned in
// row-major order: return rate outer, inflation rate inner.
func Run(ctx context.Context, logger *zap.Logger, base projection.Config, grid Grid) ([]Point, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	returns := grid.ReturnRates
	if len(returns) == 0 {
		returns = []float64{base.AnnualReturnRate}
	}
	inflations := grid.InflationRates
	if len(inflations) == 0 {
		inflations = []float64{base.AnnualInflationRate}
	}
	workers := grid.Workers
	if workers <= 0 {
		workers = constants.DefaultSweepWorkers
	}

	start := time.Now()
	points := make([]Point, len(returns)*len(inflations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range returns {
		for j, inf := range inflations {
			idx := i*len(inflations) + j
			cfg := base
			cfg.AnnualReturnRate = r
			cfg.AnnualInflationRate = inf
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				point, err := evaluate(cfg)
				if err != nil {
					return fmt.Errorf("return %v inflation %v: %w", cfg.AnnualReturnRate, cfg.AnnualInflationRate, err)
				}
				points[idx] = point
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("sensitivity sweep completed",
		zap.String("op", "sweep.Run"),
		zap.Int("points", len(points)),
		zap.Int("workers", workers),
		zap.Duration("duration", time.Since(start)),
	)
	return points, nil
}

func evaluate(cfg projection.Config) (Point, error) {
	snapshots, err := projection.Project(cfg)
	if err != nil {
		return Point{}, err
	}
	final, _ := projection.Final(snapshots)
	return Point{
		ReturnRate:    cfg.AnnualReturnRate,
		InflationRate: cfg.AnnualInflationRate,
		FinalNominal:  final.NominalBalance,
		FinalNet:      final.NetValue,
		FinalReal:     final.RealValue,
		TotalInvested: final.TotalInvested,
		AdvanceTax:    final.AccumulatedAdvanceTax,
	}, nil
}
