// Package sweep prices a bullet bond across a grid of maturities and market
// discount rates and renders the one-line-per-point report.
package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondpricer/bond"
	"github.com/meenmo/bondpricer/config"
	"github.com/meenmo/bondpricer/logger"
)

// Grid fixes the bond's face, coupon and frequency and varies maturity and
// market rate. Market rates are whole percents (7 means 0.07).
type Grid struct {
	FaceAmount            float64
	InterestRate          float64
	PaymentPeriodsPerYear int
	MaturityYears         []int
	MarketRatesPct        []int
}

// Point is one priced grid cell.
type Point struct {
	MaturityYears int
	MarketRatePct int
	Price         float64
}

// Report is the outcome of a Run. Points are in grid order: maturity-major,
// market-rate-minor.
type Report struct {
	RunID  string
	Grid   Grid
	Points []Point
}

type Options struct {
	// Workers bounds the number of concurrent pricing calls. Zero or less
	// means one per grid cell.
	Workers int
	Logger  *logger.Log
}

// DefaultGrid is the grid of config.Default.
func DefaultGrid() Grid {
	g, _ := GridFromConfig(config.Default().Sweep)
	return g
}

// GridFromConfig converts the decoded sweep section into a Grid, rejecting
// counts that are not positive whole numbers.
func GridFromConfig(sc config.SweepConfig) (Grid, error) {
	periods, err := bond.WholePeriods(sc.PaymentPeriodsPerYear, "payment_periods_per_year")
	if err != nil {
		return Grid{}, fmt.Errorf("GridFromConfig: %w", err)
	}

	maturities := make([]int, 0, len(sc.MaturityYears))
	for _, y := range sc.MaturityYears {
		n, err := bond.WholePeriods(y, "maturity_years")
		if err != nil {
			return Grid{}, fmt.Errorf("GridFromConfig: %w", err)
		}
		maturities = append(maturities, n)
	}

	return Grid{
		FaceAmount:            sc.FaceAmount,
		InterestRate:          sc.InterestRate,
		PaymentPeriodsPerYear: periods,
		MaturityYears:         maturities,
		MarketRatesPct:        append([]int(nil), sc.MarketRatesPct...),
	}, nil
}

func (g Grid) Validate() error {
	if len(g.MaturityYears) == 0 {
		return fmt.Errorf("sweep: at least one maturity is required")
	}
	if len(g.MarketRatesPct) == 0 {
		return fmt.Errorf("sweep: at least one market rate is required")
	}
	return nil
}

// Terms returns the pricing inputs for one grid cell.
func (g Grid) Terms(maturityYears, marketRatePct int) bond.Terms {
	return bond.Terms{
		FaceAmount:            g.FaceAmount,
		InterestRate:          g.InterestRate,
		PaymentPeriodsPerYear: g.PaymentPeriodsPerYear,
		MaturityYears:         maturityYears,
		MarketDiscountRate:    float64(marketRatePct) / 100.0,
	}
}

// Run prices every grid cell concurrently. The first pricing error cancels
// the remaining cells and is returned; no partial report is produced.
func Run(ctx context.Context, g Grid, opts Options) (*Report, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	runID := uuid.NewString()
	entry := log.WithComponent("sweep").WithFields(logger.Fields{"run_id": runID})

	n := len(g.MaturityYears) * len(g.MarketRatesPct)
	points := make([]Point, n)

	eg, egCtx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		eg.SetLimit(opts.Workers)
	}

	start := time.Now()
	for i, years := range g.MaturityYears {
		for j, pct := range g.MarketRatesPct {
			idx := i*len(g.MarketRatesPct) + j
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				price, err := bond.CalculatePrice(g.Terms(years, pct))
				if err != nil {
					return fmt.Errorf("sweep: %dY at %d%%: %w", years, pct, err)
				}
				points[idx] = Point{MaturityYears: years, MarketRatePct: pct, Price: price}
				entry.WithFields(logger.Fields{
					"maturity_years":  years,
					"market_rate_pct": pct,
					"price":           price,
				}).Debug("priced grid point")
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		entry.WithError(err).Error("sweep failed")
		return nil, err
	}

	logger.LogPerformance(entry, "sweep", time.Since(start), logger.Fields{"points": n})

	return &Report{RunID: runID, Grid: g, Points: points}, nil
}

// FormatLine renders a point as "<maturity>Y Maturity, Mkt <rate>%: $<price>".
func FormatLine(p Point) string {
	return fmt.Sprintf("%dY Maturity, Mkt %2d%%: $%.4f", p.MaturityYears, p.MarketRatePct, p.Price)
}

// Write prints one report line per point.
func Write(w io.Writer, points []Point) error {
	for _, p := range points {
		if _, err := fmt.Fprintln(w, FormatLine(p)); err != nil {
			return err
		}
	}
	return nil
}
