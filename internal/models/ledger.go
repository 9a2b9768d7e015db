package models

import (
	"fmt"
	"time"
)

// Setting is one market's ladder configuration. Percentages are fractions
// (0.05 means five percent).
type Setting struct {
	Market         string  `mapstructure:"market" yaml:"market"`
	UnitSize       float64 `mapstructure:"unit_size" yaml:"unit_size"`
	SmallFlowPct   float64 `mapstructure:"small_flow_pct" yaml:"small_flow_pct"`
	SmallFlowUnits int     `mapstructure:"small_flow_units" yaml:"small_flow_units"`
	LargeFlowPct   float64 `mapstructure:"large_flow_pct" yaml:"large_flow_pct"`
	LargeFlowUnits int     `mapstructure:"large_flow_units" yaml:"large_flow_units"`
	TakeProfitPct  float64 `mapstructure:"take_profit_pct" yaml:"take_profit_pct"`
}

// TierPct returns the drop percentage that drives a flow tier.
func (s Setting) TierPct(kind TierKind) (float64, error) {
	switch kind {
	case TierSmallFlow:
		return s.SmallFlowPct, nil
	case TierLargeFlow:
		return s.LargeFlowPct, nil
	default:
		return 0, fmt.Errorf("tier %q has no drop percentage", kind)
	}
}

type TierKind string

const (
	TierInitial   TierKind = "initial"
	TierSmallFlow TierKind = "small_flow"
	TierLargeFlow TierKind = "large_flow"
)

// Tiers lists tier kinds in ladder order.
var Tiers = []TierKind{TierInitial, TierSmallFlow, TierLargeFlow}

func (k TierKind) Valid() bool {
	switch k {
	case TierInitial, TierSmallFlow, TierLargeFlow:
		return true
	}
	return false
}

func (k TierKind) IsFlow() bool {
	return k == TierSmallFlow || k == TierLargeFlow
}

func (k TierKind) Rank() int {
	for i, t := range Tiers {
		if t == k {
			return i
		}
	}
	return len(Tiers)
}

// Status is the lifecycle marker of a ledger entry. Values read from ledger
// files are kept verbatim so that unknown markers surface as errors in the
// ladder engines instead of being coerced.
type Status string

const (
	StatusUnset  Status = ""
	StatusUpdate Status = "update"
	StatusWait   Status = "wait"
	StatusDone   Status = "done"
)

type BuyEntry struct {
	Time        time.Time `yaml:"time"`
	Market      string    `yaml:"market"`
	Kind        TierKind  `yaml:"buy_type"`
	TargetPrice float64   `yaml:"target_price"`
	BuyAmount   float64   `yaml:"buy_amount"`
	BuyUnits    int       `yaml:"buy_units"`
	OrderID     string    `yaml:"buy_uuid,omitempty"`
	Status      Status    `yaml:"filled"`
}

type SellEntry struct {
	Market          string  `yaml:"market"`
	AvgBuyPrice     float64 `yaml:"avg_buy_price"`
	Quantity        float64 `yaml:"quantity"`
	TargetSellPrice float64 `yaml:"target_sell_price"`
	OrderID         string  `yaml:"sell_uuid,omitempty"`
	Status          Status  `yaml:"filled"`
}
