package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runWith(t *testing.T, args []string, input string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String()
}

func TestRunSingleObject(t *testing.T) {
	code, out := runWith(t, nil, `{"task_id":"a","face_amount":24000,"interest_rate":0.10,
		"payment_periods_per_year":4,"maturity_years":2,"market_discount_rate":0.13}`)
	if code != 0 {
		t.Fatalf("exit code %d, output %s", code, out)
	}

	var got priceOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.TaskID != "a" || got.Periods != 8 {
		t.Fatalf("unexpected output: %+v", got)
	}
	if got.PriceRounded != 95.7882 {
		t.Fatalf("price_rounded: got %v want 95.7882", got.PriceRounded)
	}
	if math.Abs(got.TotalPV-got.Price*240) > 1e-6 {
		t.Fatalf("total_pv %v inconsistent with price %v", got.TotalPV, got.Price)
	}
	if got.Schedule != nil {
		t.Fatalf("schedule should be omitted unless requested")
	}
}

func TestRunArrayWithErrors(t *testing.T) {
	input := `[
		{"task_id":"ok","face_amount":24000,"interest_rate":0.10,"payment_periods_per_year":4,"maturity_years":2,"market_discount_rate":0.07,"include_schedule":true},
		{"task_id":"zero-face","face_amount":0,"interest_rate":0.10,"payment_periods_per_year":4,"maturity_years":2,"market_discount_rate":0.07},
		{"task_id":"half-year","face_amount":100,"interest_rate":0.10,"payment_periods_per_year":4,"maturity_years":2.5,"market_discount_rate":0.07},
		{"task_id":"bad-rate","face_amount":100,"interest_rate":0.10,"payment_periods_per_year":4,"maturity_years":2,"market_discount_rate":-1.2}
	]`
	code, out := runWith(t, nil, input)
	if code != 1 {
		t.Fatalf("exit code %d want 1", code)
	}

	var got []priceOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(got) != 4 {
		t.Fatalf("outputs: got %d want 4", len(got))
	}

	if got[0].Error != "" || got[0].PriceRounded != 105.892 || len(got[0].Schedule) != 8 {
		t.Fatalf("ok task: %+v", got[0])
	}
	if got[0].Schedule[7].PrincipalCents != 2400000 {
		t.Fatalf("last principal: %+v", got[0].Schedule[7])
	}

	wantErr := map[string]string{
		"zero-face": "invalid input",
		"half-year": "malformed schedule",
		"bad-rate":  "numeric domain error",
	}
	for _, o := range got[1:] {
		if !strings.Contains(o.Error, wantErr[o.TaskID]) {
			t.Fatalf("%s: error %q does not contain %q", o.TaskID, o.Error, wantErr[o.TaskID])
		}
	}
}

func TestRunInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(`{"face_amount":100,"interest_rate":0.1,"payment_periods_per_year":1,"maturity_years":5,"market_discount_rate":0.1}`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	code, out := runWith(t, []string{"-input", path}, "")
	if code != 0 {
		t.Fatalf("exit code %d, output %s", code, out)
	}
	var got priceOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PriceRounded != 100 {
		t.Fatalf("annual par bond: got %v want 100", got.PriceRounded)
	}
}

func TestRunBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "  ", "empty input"},
		{"empty array", "[]", "empty input array"},
		{"malformed", "{", "parse JSON"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out := runWith(t, nil, tc.input)
			if code != 1 || !strings.Contains(out, tc.want) {
				t.Fatalf("got (%d, %q), want exit 1 containing %q", code, out, tc.want)
			}
		})
	}
}

func TestRunFlags(t *testing.T) {
	if code, _ := runWith(t, []string{"-h"}, ""); code != 0 {
		t.Fatalf("-h exit code %d", code)
	}
	if code, _ := runWith(t, []string{"-nope"}, ""); code != 2 {
		t.Fatalf("unknown flag exit code %d", code)
	}
}

func TestRunOversizedSchedule(t *testing.T) {
	input := `[
		{"task_id":"huge","face_amount":24000,"interest_rate":0.10,"payment_periods_per_year":2000000000,"maturity_years":2000000000,"market_discount_rate":0.08},
		{"task_id":"wide","face_amount":24000,"interest_rate":0.10,"payment_periods_per_year":100000,"maturity_years":100000,"market_discount_rate":0.08}
	]`
	code, out := runWith(t, nil, input)
	if code != 1 {
		t.Fatalf("exit code %d want 1, output %s", code, out)
	}

	var got []priceOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(got) != 2 {
		t.Fatalf("outputs: got %d want 2", len(got))
	}
	for _, o := range got {
		if !strings.Contains(o.Error, "malformed schedule") {
			t.Fatalf("%s: error %q does not contain %q", o.TaskID, o.Error, "malformed schedule")
		}
	}
}
