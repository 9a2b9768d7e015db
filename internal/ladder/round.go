package ladder

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// Round rounds v to places decimals, ties to even. Ladder prices are rounded to
// the currency's smallest unit only; tick alignment happens at execution.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}

// dropPrice is round(price * (1 - pct)).
func dropPrice(price, pct float64) float64 {
	p := decimal.NewFromFloat(price)
	return p.Mul(one.Sub(decimal.NewFromFloat(pct))).RoundBank(0).InexactFloat64()
}

// risePrice is round(price * (1 + pct), 2).
func risePrice(price, pct float64) float64 {
	p := decimal.NewFromFloat(price)
	return p.Mul(one.Add(decimal.NewFromFloat(pct))).RoundBank(2).InexactFloat64()
}
