package ladder

import (
	"fmt"
	"sort"

	"ladderbot/internal/models"
)

type BuyKey struct {
	Market string
	Kind   models.TierKind
}

func KeyOf(e models.BuyEntry) BuyKey {
	return BuyKey{Market: e.Market, Kind: e.Kind}
}

// BuyLedger holds at most one entry per (market, tier).
type BuyLedger map[BuyKey]models.BuyEntry

// NewBuyLedger indexes entries, rejecting a second entry for the same key.
func NewBuyLedger(entries []models.BuyEntry) (BuyLedger, error) {
	ledger := make(BuyLedger, len(entries))
	for _, e := range entries {
		key := KeyOf(e)
		if _, dup := ledger[key]; dup {
			return nil, fmt.Errorf("duplicate buy entry for %s/%s", e.Market, e.Kind)
		}
		ledger[key] = e
	}
	return ledger, nil
}

func (l BuyLedger) Clone() BuyLedger {
	out := make(BuyLedger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func (l BuyLedger) Put(e models.BuyEntry) {
	l[KeyOf(e)] = e
}

func (l BuyLedger) Get(market string, kind models.TierKind) (models.BuyEntry, bool) {
	e, ok := l[BuyKey{Market: market, Kind: kind}]
	return e, ok
}

func (l BuyLedger) HasMarket(market string) bool {
	for k := range l {
		if k.Market == market {
			return true
		}
	}
	return false
}

func (l BuyLedger) RemoveMarket(market string) {
	for k := range l {
		if k.Market == market {
			delete(l, k)
		}
	}
}

// Entries returns entries ordered by market, then ladder tier order.
func (l BuyLedger) Entries() []models.BuyEntry {
	out := make([]models.BuyEntry, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Market != out[j].Market {
			return out[i].Market < out[j].Market
		}
		if out[i].Kind.Rank() != out[j].Kind.Rank() {
			return out[i].Kind.Rank() < out[j].Kind.Rank()
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Pending returns the entries the execution layer must act on this cycle.
func (l BuyLedger) Pending() []models.BuyEntry {
	var out []models.BuyEntry
	for _, e := range l.Entries() {
		if e.Status == models.StatusUpdate {
			out = append(out, e)
		}
	}
	return out
}

// SellLedger holds at most one take-profit entry per market.
type SellLedger map[string]models.SellEntry

func NewSellLedger(entries []models.SellEntry) (SellLedger, error) {
	ledger := make(SellLedger, len(entries))
	for _, e := range entries {
		if _, dup := ledger[e.Market]; dup {
			return nil, fmt.Errorf("duplicate sell entry for %s", e.Market)
		}
		ledger[e.Market] = e
	}
	return ledger, nil
}

func (l SellLedger) Clone() SellLedger {
	out := make(SellLedger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func (l SellLedger) Entries() []models.SellEntry {
	out := make([]models.SellEntry, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Market < out[j].Market })
	return out
}

func (l SellLedger) Pending() []models.SellEntry {
	var out []models.SellEntry
	for _, e := range l.Entries() {
		if e.Status == models.StatusUpdate {
			out = append(out, e)
		}
	}
	return out
}
