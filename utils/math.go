package utils

import "math"

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}

// IsWhole reports whether val is a finite integer value.
func IsWhole(val float64) bool {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return false
	}
	return val == math.Trunc(val)
}

// ToMinorUnits converts an amount into integer minor units (e.g. cents),
// rounding half away from zero.
func ToMinorUnits(amount float64, decimals uint32) int64 {
	return int64(math.Round(amount * math.Pow(10, float64(decimals))))
}
