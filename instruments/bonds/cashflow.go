package bonds

import (
	"github.com/meenmo/bondpricer/bond"
	"github.com/meenmo/bondpricer/utils"
)

// RowCents mirrors the Bloomberg-style cashflow feed where coupon/principal
// are stored as integer minor units (e.g., cents for EUR).
type RowCents struct {
	Period         int     `json:"period"`
	Tenor          float64 `json:"tenor"`
	DiscountFactor float64 `json:"discount_factor"`
	CouponCents    int64   `json:"coupon"`
	PrincipalCents int64   `json:"principal"`
	PVCents        int64   `json:"pv"`
}

func FromRow(r bond.ScheduleRow) RowCents {
	return RowCents{
		Period:         r.Period,
		Tenor:          r.Tenor,
		DiscountFactor: r.DiscountFactor,
		CouponCents:    utils.ToMinorUnits(r.InterestPmt, 2),
		PrincipalCents: utils.ToMinorUnits(r.PrincipalPmt, 2),
		PVCents:        utils.ToMinorUnits(r.PVPayment, 2),
	}
}

func ToCents(s bond.Schedule) []RowCents {
	out := make([]RowCents, 0, len(s))
	for _, row := range s {
		out = append(out, FromRow(row))
	}
	return out
}
