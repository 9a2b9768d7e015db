package tick

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	cases := []struct {
		price  string
		market string
		want   string
	}{
		{"2500000", "KRW-BTC", "1000"},
		{"2000000", "KRW-BTC", "1000"},
		{"1234567", "KRW-BTC", "500"},
		{"600000", "KRW-ETH", "100"},
		{"150000", "KRW-SOL", "50"},
		{"15000", "KRW-LINK", "10"},
		{"5000", "KRW-XRP", "1"},
		{"5000", "KRW-ADA", "0.5"},
		{"500", "KRW-XRP", "1"},
		{"500", "KRW-TRX", "0.1"},
		{"50", "KRW-DOGE", "0.01"},
		{"5", "KRW-X", "0.001"},
		{"0.5", "KRW-X", "0.0001"},
		{"0.05", "KRW-X", "0.00001"},
		{"0.005", "KRW-X", "0.000001"},
		{"0.0005", "KRW-X", "0.0000001"},
		{"0.00005", "KRW-X", "0.00000001"},
		{"15000", "ADA", "10"},
	}
	for _, tc := range cases {
		t.Run(tc.market+"@"+tc.price, func(t *testing.T) {
			got, err := Size(decimal.RequireFromString(tc.price), tc.market)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestAdjust(t *testing.T) {
	cases := []struct {
		price  float64
		market string
		want   float64
	}{
		{1234567, "KRW-BTC", 1234500},
		{1234750, "KRW-BTC", 1235000},
		{1234749, "KRW-BTC", 1234500},
		{98.595, "KRW-XRP", 98.6},
		{98.585, "KRW-XRP", 98.59},
		{532.25, "KRW-XRP", 532},
		{532.5, "KRW-XRP", 533},
		{532.25, "KRW-ADA", 532.3},
		{1999999, "KRW-BTC", 2000000},
		{0.00012345, "KRW-X", 0.0001235},
	}
	for _, tc := range cases {
		got, err := Adjust(tc.price, tc.market)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "adjust %v %s", tc.price, tc.market)
	}
}

func TestAdjustOnGrid(t *testing.T) {
	got, err := AdjustDecimal(decimal.NewFromInt(1234567), "KRW-BTC")
	require.NoError(t, err)
	assert.True(t, got.Mod(decimal.NewFromInt(500)).IsZero(), "%s is off the 500 grid", got)
}

func TestAdjustIdempotent(t *testing.T) {
	prices := []float64{
		0.00001234, 0.0004567, 0.0123456, 0.987654, 7.77777, 12.3456, 99.99, 100.05,
		999.95, 1000.25, 9999.5, 10004.9, 99999.99, 100024, 499975, 500049, 999950,
		1000249, 1999999, 2000499, 123456789,
	}
	for _, market := range []string{"KRW-BTC", "KRW-ADA"} {
		for _, p := range prices {
			once, err := Adjust(p, market)
			require.NoError(t, err)
			twice, err := Adjust(once, market)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "adjust not idempotent for %v in %s", p, market)
		}
	}
}

func TestAdjustRejectsForeignQuote(t *testing.T) {
	_, err := Adjust(100, "BTC-ETH")
	assert.ErrorIs(t, err, ErrUnsupportedMarket)
}
