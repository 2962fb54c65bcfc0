package dashboard

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent returns part/total*100 rounded to one decimal place, half away from zero.
// A zero (or negative) total yields 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), 1).
		InexactFloat64()
}
