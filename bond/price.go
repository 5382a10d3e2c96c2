package bond

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/bondpricer/utils"
)

var (
	// ErrInvalidInput reports a face amount or coupon rate the pricer cannot use.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedSchedule reports a coupon frequency or maturity that does not
	// produce a positive whole number of periods.
	ErrMalformedSchedule = errors.New("malformed schedule")
	// ErrNumericDomain reports a discount rate for which (1+r)^-t is undefined.
	ErrNumericDomain = errors.New("numeric domain error")
)

// MaxPeriods caps the number of rows a single schedule may hold.
const MaxPeriods = 1_000_000

// Validate checks t before any schedule is built.
func (t Terms) Validate() error {
	if t.FaceAmount == 0 {
		return fmt.Errorf("%w: face amount must be non-zero", ErrInvalidInput)
	}
	if !isFinite(t.FaceAmount) {
		return fmt.Errorf("%w: face amount must be finite, got %v", ErrInvalidInput, t.FaceAmount)
	}
	if !isFinite(t.InterestRate) {
		return fmt.Errorf("%w: interest rate must be finite, got %v", ErrInvalidInput, t.InterestRate)
	}
	if t.PaymentPeriodsPerYear <= 0 {
		return fmt.Errorf("%w: payment periods per year must be positive, got %d", ErrMalformedSchedule, t.PaymentPeriodsPerYear)
	}
	if t.MaturityYears <= 0 {
		return fmt.Errorf("%w: maturity years must be positive, got %d", ErrMalformedSchedule, t.MaturityYears)
	}
	if t.MaturityYears > MaxPeriods/t.PaymentPeriodsPerYear {
		return fmt.Errorf("%w: %d periods per year over %d years exceeds %d periods",
			ErrMalformedSchedule, t.PaymentPeriodsPerYear, t.MaturityYears, MaxPeriods)
	}
	if !isFinite(t.MarketDiscountRate) {
		return fmt.Errorf("%w: market discount rate must be finite, got %v", ErrNumericDomain, t.MarketDiscountRate)
	}
	if t.MarketDiscountRate <= -1 {
		return fmt.Errorf("%w: market discount rate must be greater than -1, got %v", ErrNumericDomain, t.MarketDiscountRate)
	}
	return nil
}

// BuildSchedule generates the bullet schedule for t: a flat coupon every
// period, the full face amount repaid in the last period, and each payment
// discounted at the annual market rate over its tenor in years.
func BuildSchedule(t Terms) (Schedule, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("BuildSchedule: %w", err)
	}

	n := t.Periods()
	m := float64(t.PaymentPeriodsPerYear)
	coupon := t.FaceAmount * t.InterestRate / m

	schedule := make(Schedule, 0, n)
	for period := 1; period <= n; period++ {
		principal := 0.0
		if period == n {
			principal = t.FaceAmount
		}

		tenor := float64(period) / m
		df := 1.0 / math.Pow(1.0+t.MarketDiscountRate, tenor)

		schedule = append(schedule, ScheduleRow{
			Period:         period,
			BeginningBal:   t.FaceAmount,
			InterestPmt:    coupon,
			PrincipalPmt:   principal,
			EndingBal:      t.FaceAmount,
			Tenor:          tenor,
			DiscountFactor: df,
			PVPayment:      (coupon + principal) * df,
		})
	}

	return schedule, nil
}

// Price values t and returns the price together with the schedule it was
// computed from.
func Price(t Terms) (Result, error) {
	schedule, err := BuildSchedule(t)
	if err != nil {
		return Result{}, err
	}

	totalPV := schedule.TotalPV()
	price := 100.0 * totalPV / t.FaceAmount
	if !isFinite(price) {
		return Result{}, fmt.Errorf("Price: %w: price is not finite (total pv %v)", ErrNumericDomain, totalPV)
	}

	return Result{
		Price:    price,
		TotalPV:  totalPV,
		Schedule: schedule,
	}, nil
}

// CalculatePrice returns the price of a bullet bond as a percentage of face.
//
//	price = 100 / F * Σ_{k=1..N} (C + P_k) / (1+r)^(k/m)
//
// where C = F·c/m, P_k = F for k = N and 0 otherwise, N = m·years.
func CalculatePrice(t Terms) (float64, error) {
	res, err := Price(t)
	if err != nil {
		return 0, fmt.Errorf("CalculatePrice: %w", err)
	}
	return res.Price, nil
}

// EquivalentAnnualRate converts a nominal coupon rate paid periodsPerYear
// times a year into the annually compounded rate that discounts those
// coupons back to par.
func EquivalentAnnualRate(couponRate float64, periodsPerYear int) float64 {
	m := float64(periodsPerYear)
	return math.Pow(1.0+couponRate/m, m) - 1.0
}

// WholePeriods converts a count decoded as a float (JSON, YAML) into a
// positive int, rejecting fractional and non-positive values.
func WholePeriods(v float64, field string) (int, error) {
	if !utils.IsWhole(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %v", ErrMalformedSchedule, field, v)
	}
	if v < 1 {
		return 0, fmt.Errorf("%w: %s must be positive, got %v", ErrMalformedSchedule, field, v)
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is too large, got %v", ErrMalformedSchedule, field, v)
	}
	return int(v), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
