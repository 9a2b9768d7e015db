// Package tick maps prices onto the venue's KRW tick-size grid.
//
// All arithmetic is done in decimal: prices routinely sit exactly on a tick
// boundary and binary floating point would shift them by one tick.
package tick

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const QuoteCurrency = "KRW"

var ErrUnsupportedMarket = errors.New("only KRW markets are supported")

// fineTickers trade on a finer grid between 100 and 10,000 KRW.
var fineTickers = map[string]struct{}{
	"ADA": {}, "ALGO": {}, "BLUR": {}, "CELO": {}, "ELF": {}, "EOS": {}, "GRS": {}, "GRT": {},
	"ICX": {}, "MANA": {}, "MINA": {}, "POL": {}, "SAND": {}, "SEI": {}, "STG": {}, "TRX": {},
}

type band struct {
	floor decimal.Decimal
	size  decimal.Decimal
	fine  decimal.Decimal
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// bands are ordered from the highest floor down; the last band catches everything.
var bands = []band{
	{floor: d("2000000"), size: d("1000")},
	{floor: d("1000000"), size: d("500")},
	{floor: d("500000"), size: d("100")},
	{floor: d("100000"), size: d("50")},
	{floor: d("10000"), size: d("10")},
	{floor: d("1000"), size: d("1"), fine: d("0.5")},
	{floor: d("100"), size: d("1"), fine: d("0.1")},
	{floor: d("10"), size: d("0.01")},
	{floor: d("1"), size: d("0.001")},
	{floor: d("0.1"), size: d("0.0001")},
	{floor: d("0.01"), size: d("0.00001")},
	{floor: d("0.001"), size: d("0.000001")},
	{floor: d("0.0001"), size: d("0.0000001")},
	{floor: decimal.Zero, size: d("0.00000001")},
}

// BaseTicker strips the quote prefix: "KRW-ADA" -> "ADA".
func BaseTicker(market string) (string, error) {
	quote, base, found := strings.Cut(market, "-")
	if !found {
		return market, nil
	}
	if quote != QuoteCurrency {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMarket, market)
	}
	return base, nil
}

// Size returns the tick size for price in the given market or ticker.
func Size(price decimal.Decimal, market string) (decimal.Decimal, error) {
	base, err := BaseTicker(market)
	if err != nil {
		return decimal.Zero, err
	}
	_, fine := fineTickers[base]
	for _, b := range bands {
		if price.GreaterThanOrEqual(b.floor) {
			if fine && !b.fine.IsZero() {
				return b.fine, nil
			}
			return b.size, nil
		}
	}
	return bands[len(bands)-1].size, nil
}

// AdjustDecimal rounds price to the nearest tick, ties going to the higher tick.
func AdjustDecimal(price decimal.Decimal, market string) (decimal.Decimal, error) {
	size, err := Size(price, market)
	if err != nil {
		return decimal.Zero, err
	}
	steps := price.DivRound(size, 16).Round(0)
	return steps.Mul(size), nil
}

func Adjust(price float64, market string) (float64, error) {
	adjusted, err := AdjustDecimal(decimal.NewFromFloat(price), market)
	if err != nil {
		return 0, err
	}
	return adjusted.InexactFloat64(), nil
}
