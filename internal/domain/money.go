package domain

import "github.com/shopspring/decimal"

// Round2 rounds a currency amount to 2 decimal places. Aggregations sum
// exact values and call this only when building the response.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
