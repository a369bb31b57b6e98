package convert

import (
	"math"
)

// TwoDecimals rounds to the precision prices are published at.
func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

// RoundFloat64 rounds half away from zero to the given number of
// decimals.
func RoundFloat64(number float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(number*p) / p
}
