package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ladderbot/internal/ladder"
	"ladderbot/internal/models"
	"ladderbot/internal/tick"
)

// ExecuteBuys submits every buy entry marked update and returns the ledger
// with venue order ids and statuses filled in. Skipped entries are unchanged.
func (e *Executor) ExecuteBuys(ctx context.Context, ledger ladder.BuyLedger) ladder.BuyLedger {
	next := ledger.Clone()
	var submitted []models.BuyEntry

	for _, entry := range ledger.Pending() {
		log := e.logEntry().WithFields(logrus.Fields{"market": entry.Market, "tier": entry.Kind})
		var placed models.BuyEntry
		err := guard(func() error {
			var err error
			placed, err = e.submitBuy(ctx, entry)
			return err
		})
		if err != nil {
			e.metrics.Rejected(string(models.OrderSideBid), e.rejectReason(err))
			log.WithError(err).Warn("Buy entry skipped.")
			continue
		}
		e.metrics.Submitted(string(models.OrderSideBid), string(entry.Kind))
		log.WithFields(logrus.Fields{"order_id": placed.OrderID, "price": placed.TargetPrice}).Info("Buy order placed.")
		next.Put(placed)
		submitted = append(submitted, placed)
	}

	ids := make([]string, 0, len(submitted))
	for _, s := range submitted {
		ids = append(ids, s.OrderID)
	}
	records := e.results(ctx, ids)
	for _, s := range submitted {
		if rec, ok := records[s.OrderID]; ok && rec.Filled() {
			s.Status = models.StatusDone
			next.Put(s)
		}
	}
	return next
}

func (e *Executor) submitBuy(ctx context.Context, entry models.BuyEntry) (models.BuyEntry, error) {
	order := models.Order{
		Market:     entry.Market,
		Side:       models.OrderSideBid,
		Identifier: uuid.NewString(),
	}

	// A flow tier's notional is price * (amount / price), checked before the
	// volume is rounded.
	if entry.BuyAmount < e.minNotional {
		return entry, fmt.Errorf("%w: %.2f", ErrBelowMinNotional, entry.BuyAmount)
	}

	if entry.Kind == models.TierInitial {
		order.Type = models.OrderTypePrice
		order.Amount = entry.BuyAmount
	} else {
		price, err := tick.Adjust(entry.TargetPrice, entry.Market)
		if err != nil {
			return entry, err
		}
		if price <= 0 {
			return entry, fmt.Errorf("%w: price %v", ErrBelowMinNotional, entry.TargetPrice)
		}
		volume := ladder.Round(entry.BuyAmount/price, 8)
		order.Type = models.OrderTypeLimit
		order.Price = price
		order.Volume = volume
	}

	if entry.OrderID != "" {
		if err := e.cancelStale(ctx, entry.OrderID); err != nil {
			return entry, err
		}
	}

	rec, err := e.place(ctx, order)
	if err != nil {
		return entry, err
	}
	entry.OrderID = rec.UUID
	entry.Status = models.StatusWait
	return entry, nil
}
