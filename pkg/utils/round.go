package utils

import "github.com/shopspring/decimal"

// RoundTo rounds half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	return decimal.NewFromFloat(v).Round(int32(places)).InexactFloat64()
}

// RoundCents rounds a currency amount to 2 decimals.
func RoundCents(v float64) float64 { return RoundTo(v, 2) }

// RoundBasisPoints rounds a ratio to 4 decimals.
func RoundBasisPoints(v float64) float64 { return RoundTo(v, 4) }
