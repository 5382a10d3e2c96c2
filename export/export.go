// Package export persists sweep reports.
package export

import (
	"context"

	"github.com/meenmo/bondpricer/sweep"
)

// Sink receives a finished sweep report.
type Sink interface {
	Write(ctx context.Context, report *sweep.Report) error
	Close() error
}

// Row is the flat, per-point record shared by every sink.
type Row struct {
	RunID                 string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FaceAmount            float64 `parquet:"name=face_amount, type=DOUBLE"`
	InterestRate          float64 `parquet:"name=interest_rate, type=DOUBLE"`
	PaymentPeriodsPerYear int32   `parquet:"name=payment_periods_per_year, type=INT32"`
	MaturityYears         int32   `parquet:"name=maturity_years, type=INT32"`
	MarketRatePct         int32   `parquet:"name=market_rate_pct, type=INT32"`
	Price                 float64 `parquet:"name=price, type=DOUBLE"`
}

// Rows flattens report in point order.
func Rows(report *sweep.Report) []Row {
	rows := make([]Row, 0, len(report.Points))
	for _, p := range report.Points {
		rows = append(rows, Row{
			RunID:                 report.RunID,
			FaceAmount:            report.Grid.FaceAmount,
			InterestRate:          report.Grid.InterestRate,
			PaymentPeriodsPerYear: int32(report.Grid.PaymentPeriodsPerYear),
			MaturityYears:         int32(p.MaturityYears),
			MarketRatePct:         int32(p.MarketRatePct),
			Price:                 p.Price,
		})
	}
	return rows
}
