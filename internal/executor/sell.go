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

const takeProfitTier = "take_profit"

// ExecuteSells places a tick-aligned limit sell for every entry marked
// update. A placed entry is marked done with its order id; the fill itself is
// picked up by Reconcile.
func (e *Executor) ExecuteSells(ctx context.Context, ledger ladder.SellLedger) ladder.SellLedger {
	next := ledger.Clone()
	var ids []string

	for _, entry := range ledger.Pending() {
		log := e.logEntry().WithField("market", entry.Market)
		var placed models.SellEntry
		err := guard(func() error {
			var err error
			placed, err = e.submitSell(ctx, entry)
			return err
		})
		if err != nil {
			e.metrics.Rejected(string(models.OrderSideAsk), e.rejectReason(err))
			log.WithError(err).Warn("Sell entry skipped.")
			continue
		}
		e.metrics.Submitted(string(models.OrderSideAsk), takeProfitTier)
		log.WithFields(logrus.Fields{"order_id": placed.OrderID, "target": placed.TargetSellPrice}).Info("Sell order placed.")
		next[placed.Market] = placed
		ids = append(ids, placed.OrderID)
	}

	e.results(ctx, ids)
	return next
}

func (e *Executor) submitSell(ctx context.Context, entry models.SellEntry) (models.SellEntry, error) {
	if notional := entry.TargetSellPrice * entry.Quantity; notional < e.minNotional {
		return entry, fmt.Errorf("%w: %.2f", ErrBelowMinNotional, notional)
	}
	price, err := tick.Adjust(entry.TargetSellPrice, entry.Market)
	if err != nil {
		return entry, err
	}

	if entry.OrderID != "" {
		if err := e.cancelStale(ctx, entry.OrderID); err != nil {
			return entry, err
		}
	}

	rec, err := e.place(ctx, models.Order{
		Market:     entry.Market,
		Side:       models.OrderSideAsk,
		Type:       models.OrderTypeLimit,
		Price:      price,
		Volume:     entry.Quantity,
		Identifier: uuid.NewString(),
	})
	if err != nil {
		return entry, err
	}
	entry.OrderID = rec.UUID
	entry.Status = models.StatusDone
	return entry, nil
}
