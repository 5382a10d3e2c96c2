package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/bondpricer/bond"
	"github.com/meenmo/bondpricer/instruments/bonds"
	"github.com/meenmo/bondpricer/logger"
	"github.com/meenmo/bondpricer/utils"
)

// priceInput is one pricing request. Rates are decimals (0.10 means 10%).
// Counts are decoded as floats so fractional values get a schedule error
// rather than a JSON type error.
type priceInput struct {
	TaskID                string  `json:"task_id,omitempty"`
	FaceAmount            float64 `json:"face_amount"`
	InterestRate          float64 `json:"interest_rate"`
	PaymentPeriodsPerYear float64 `json:"payment_periods_per_year"`
	MaturityYears         float64 `json:"maturity_years"`
	MarketDiscountRate    float64 `json:"market_discount_rate"`
	IncludeSchedule       bool    `json:"include_schedule,omitempty"`
}

type priceOutput struct {
	TaskID       string           `json:"task_id,omitempty"`
	Price        float64          `json:"price"`
	PriceRounded float64          `json:"price_rounded"`
	TotalPV      float64          `json:"total_pv"`
	Periods      int              `json:"periods"`
	Schedule     []bonds.RowCents `json:"schedule,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bondprice", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (reads stdin if omitted)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if f, ok := stdin.(*os.File); ok {
			if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
				usage(stderr)
				return 2
			}
		}
	}

	log := logger.GetLogger().WithComponent("bondprice")

	raw, err := readInput(stdin, path)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("read input: %v", err))
	}

	inputs, isArray, err := parseInputs(raw)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("parse JSON: %v", err))
	}

	hadError := false
	outputs := make([]priceOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := process(in)
		if err != nil {
			hadError = true
			log.WithError(err).WithFields(logger.Fields{"task_id": in.TaskID}).Warn("pricing failed")
			outputs = append(outputs, priceOutput{TaskID: in.TaskID, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}

	var b []byte
	if isArray {
		b, _ = json.Marshal(outputs)
	} else {
		b, _ = json.Marshal(outputs[0])
	}
	fmt.Fprintln(stdout, string(b))

	if hadError {
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bondprice < input.json")
	fmt.Fprintln(w, "  bondprice -input /path/to/input.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Price bullet bonds as a percentage of face. Input is a JSON object or array.")
}

func process(in priceInput) (*priceOutput, error) {
	periods, err := bond.WholePeriods(in.PaymentPeriodsPerYear, "payment_periods_per_year")
	if err != nil {
		return nil, err
	}
	maturity, err := bond.WholePeriods(in.MaturityYears, "maturity_years")
	if err != nil {
		return nil, err
	}

	res, err := bond.Price(bond.Terms{
		FaceAmount:            in.FaceAmount,
		InterestRate:          in.InterestRate,
		PaymentPeriodsPerYear: periods,
		MaturityYears:         maturity,
		MarketDiscountRate:    in.MarketDiscountRate,
	})
	if err != nil {
		return nil, err
	}

	out := &priceOutput{
		TaskID:       in.TaskID,
		Price:        res.Price,
		PriceRounded: utils.RoundTo(res.Price, 4),
		TotalPV:      res.TotalPV,
		Periods:      len(res.Schedule),
	}
	if in.IncludeSchedule {
		out.Schedule = bonds.ToCents(res.Schedule)
	}
	return out, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func parseInputs(raw []byte) ([]priceInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []priceInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input priceInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []priceInput{input}, false, nil
}

func writeError(stdout io.Writer, msg string) int {
	b, _ := json.Marshal(priceOutput{Error: msg})
	fmt.Fprintln(stdout, string(b))
	return 1
}
