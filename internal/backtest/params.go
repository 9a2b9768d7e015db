package backtest

import "ladderbot/internal/ladder"

type TakeProfitLevel struct {
	Gain  float64
	Ratio float64
}

// Params are the simulated account and exit rules of a replay.
type Params struct {
	InitialCash  float64
	FeeRate      float64
	MinCashRatio float64
	StopLossPct  float64
	// TakeProfitLevels are checked in order; the first level reached sells
	// its ratio of the current holding and ends the check for that bar.
	TakeProfitLevels []TakeProfitLevel
	Dust             float64
	RepriceRatio     float64
}

func DefaultParams() Params {
	return Params{
		InitialCash:  10_000_000,
		FeeRate:      0.0005,
		MinCashRatio: 0.30,
		StopLossPct:  0.05,
		TakeProfitLevels: []TakeProfitLevel{
			{Gain: 0.02, Ratio: 0.3},
			{Gain: 0.04, Ratio: 0.3},
			{Gain: 0.06, Ratio: 1.0},
		},
		Dust:         1e-7,
		RepriceRatio: ladder.DefaultRepriceRatio,
	}
}
