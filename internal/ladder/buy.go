package ladder

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ladderbot/internal/models"
)

// DefaultRepriceRatio is the share of a tier's drop percentage that price must
// recover above a waiting target before the target is raised.
const DefaultRepriceRatio = 0.5

// BuyLadder plans the buy side of every configured market.
type BuyLadder struct {
	RepriceRatio float64
	Now          func() time.Time
	Log          logrus.FieldLogger
}

func NewBuyLadder(log logrus.FieldLogger) *BuyLadder {
	return &BuyLadder{
		RepriceRatio: DefaultRepriceRatio,
		Now:          time.Now,
		Log:          orDiscard(log),
	}
}

// Update returns the next buy ledger. The input ledger is not modified. Any
// error aborts the whole ladder: callers must not submit a partial result.
func (b *BuyLadder) Update(settings []models.Setting, ledger BuyLedger, prices map[string]float64) (BuyLedger, error) {
	next := ledger.Clone()
	for _, s := range settings {
		log := b.log().WithField("market", s.Market)
		price, ok := prices[s.Market]
		if !ok || price <= 0 {
			log.Warn("No current price, market skipped.")
			continue
		}

		if !next.HasMarket(s.Market) {
			b.plant(next, s, price)
			log.WithField("price", price).Info("New ladder planted.")
			continue
		}

		initial, ok := next.Get(s.Market, models.TierInitial)
		if !ok || initial.Status != models.StatusDone {
			continue
		}

		for _, kind := range []models.TierKind{models.TierSmallFlow, models.TierLargeFlow} {
			entry, ok := next.Get(s.Market, kind)
			if !ok {
				continue
			}
			updated, err := b.advance(s, entry, price)
			if err != nil {
				return nil, err
			}
			next.Put(updated)
		}
	}
	return next, nil
}

func (b *BuyLadder) plant(ledger BuyLedger, s models.Setting, price float64) {
	now := b.now()
	ledger.Put(models.BuyEntry{
		Time:        now,
		Market:      s.Market,
		Kind:        models.TierInitial,
		TargetPrice: price,
		BuyAmount:   s.UnitSize,
		BuyUnits:    1,
		Status:      models.StatusUpdate,
	})
	ledger.Put(models.BuyEntry{
		Time:        now,
		Market:      s.Market,
		Kind:        models.TierSmallFlow,
		TargetPrice: dropPrice(price, s.SmallFlowPct),
		BuyAmount:   s.UnitSize * float64(s.SmallFlowUnits),
		BuyUnits:    s.SmallFlowUnits,
		Status:      models.StatusUpdate,
	})
	ledger.Put(models.BuyEntry{
		Time:        now,
		Market:      s.Market,
		Kind:        models.TierLargeFlow,
		TargetPrice: dropPrice(price, s.LargeFlowPct),
		BuyAmount:   s.UnitSize * float64(s.LargeFlowUnits),
		BuyUnits:    s.LargeFlowUnits,
		Status:      models.StatusUpdate,
	})
}

// advance moves one flow tier forward after the initial buy has filled.
func (b *BuyLadder) advance(s models.Setting, e models.BuyEntry, price float64) (models.BuyEntry, error) {
	if missing := MissingFields(e); len(missing) > 0 {
		return e, &ValidationError{Market: s.Market, Kind: e.Kind, Fields: missing}
	}
	pct, err := s.TierPct(e.Kind)
	if err != nil {
		return e, err
	}
	log := b.log().WithFields(logrus.Fields{"market": e.Market, "tier": e.Kind})

	switch e.Status {
	case models.StatusWait:
		threshold := decimal.NewFromFloat(e.TargetPrice).Mul(decimal.NewFromFloat(pct * b.ratio()))
		gap := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(e.TargetPrice))
		if gap.GreaterThan(threshold) {
			raised := threshold.Add(decimal.NewFromFloat(e.TargetPrice)).InexactFloat64()
			newPrice := dropPrice(raised, pct)
			log.WithFields(logrus.Fields{"from": e.TargetPrice, "to": newPrice}).Info("Waiting tier repriced.")
			e.TargetPrice = newPrice
			e.Status = models.StatusUpdate
		}
	case models.StatusDone:
		newPrice := dropPrice(e.TargetPrice, pct)
		log.WithFields(logrus.Fields{"from": e.TargetPrice, "to": newPrice}).Info("Filled tier chained.")
		e.OrderID = ""
		e.TargetPrice = newPrice
		e.Status = models.StatusUpdate
	case models.StatusUpdate:
		// Not yet accepted by the venue; it goes out again this cycle.
	case models.StatusUnset:
		log.Info("Manual entry accepted.")
		e.Status = models.StatusUpdate
	default:
		return e, fmt.Errorf("%w: %s/%s %q", ErrUnexpectedStatus, e.Market, e.Kind, e.Status)
	}
	return e, nil
}

func (b *BuyLadder) ratio() float64 {
	if b.RepriceRatio <= 0 {
		return DefaultRepriceRatio
	}
	return b.RepriceRatio
}

func (b *BuyLadder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *BuyLadder) log() logrus.FieldLogger {
	return orDiscard(b.Log)
}

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
