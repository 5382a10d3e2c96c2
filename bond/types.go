package bond

// Terms are the contractual and market inputs for pricing a bullet bond.
//
// Rates are decimals (0.10 means 10%), not percent.
type Terms struct {
	FaceAmount            float64
	InterestRate          float64
	PaymentPeriodsPerYear int
	MaturityYears         int
	MarketDiscountRate    float64
}

// Periods returns the number of coupon periods in the schedule.
func (t Terms) Periods() int {
	return t.PaymentPeriodsPerYear * t.MaturityYears
}

// ScheduleRow is a single coupon period of a bullet bond.
//
// Amounts are in currency units of FaceAmount, not price-per-100.
type ScheduleRow struct {
	Period         int
	BeginningBal   float64
	InterestPmt    float64
	PrincipalPmt   float64
	EndingBal      float64
	Tenor          float64
	DiscountFactor float64
	PVPayment      float64
}

func (r ScheduleRow) Amount() float64 {
	return r.InterestPmt + r.PrincipalPmt
}

// Schedule is the ordered cash-flow schedule, period 1 first.
type Schedule []ScheduleRow

// TotalPV sums the discounted payments of every period.
func (s Schedule) TotalPV() float64 {
	total := 0.0
	for _, row := range s {
		total += row.PVPayment
	}
	return total
}

// Result is the output of Price.
type Result struct {
	// Price is the present value as a percentage of face (par = 100).
	Price    float64
	TotalPV  float64
	Schedule Schedule
}
