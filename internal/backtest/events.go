package backtest

import (
	"fmt"
	"strings"

	"ladderbot/internal/models"
)

type EventKind string

const (
	EventBuy         EventKind = "buy"
	EventStopLoss    EventKind = "stop_loss"
	EventPartialSell EventKind = "partial_sell"
	EventTakeProfit  EventKind = "take_profit"
)

// Event is one trade that happened on a bar.
type Event struct {
	Kind    EventKind
	Tier    models.TierKind
	Percent float64
	Ratio   float64
}

func (e Event) String() string {
	switch e.Kind {
	case EventBuy:
		return fmt.Sprintf("buy %s", e.Tier)
	case EventPartialSell:
		return fmt.Sprintf("partial_sell +%g%% %g%%", pct(e.Percent), pct(e.Ratio))
	default:
		return string(e.Kind)
	}
}

// RenderEvents joins a bar's events, or returns "hold" when nothing traded.
func RenderEvents(events []Event) string {
	if len(events) == 0 {
		return "hold"
	}
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

func pct(v float64) float64 {
	return float64(int(v*100 + 0.5))
}
