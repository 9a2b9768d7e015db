package executor

import (
	"context"

	"github.com/sirupsen/logrus"

	"ladderbot/internal/ladder"
	"ladderbot/internal/models"
)

// Reconcile asks the venue about orders placed in earlier cycles and folds
// the answers into the ledgers:
//
//   - a waiting buy whose order filled becomes done, so the ladder chains it
//   - a filled take-profit sell ends the position: the market's resting buy
//     orders are cancelled, then its buy ladder and sell entry are removed;
//     if a cancel fails the market is left for the next cycle
//   - an order cancelled without a fill is cleared and marked update again
func (e *Executor) Reconcile(ctx context.Context, buys ladder.BuyLedger, sells ladder.SellLedger) (ladder.BuyLedger, ladder.SellLedger) {
	nextBuys := buys.Clone()
	nextSells := sells.Clone()

	var ids []string
	for _, b := range buys.Entries() {
		if b.Status == models.StatusWait && b.OrderID != "" {
			ids = append(ids, b.OrderID)
		}
	}
	for _, s := range sells.Entries() {
		if s.Status == models.StatusDone && s.OrderID != "" {
			ids = append(ids, s.OrderID)
		}
	}
	if len(ids) == 0 {
		return nextBuys, nextSells
	}

	records := e.results(ctx, ids)

	for _, b := range buys.Entries() {
		rec, ok := records[b.OrderID]
		if !ok || b.Status != models.StatusWait || b.OrderID == "" {
			continue
		}
		log := e.logEntry().WithFields(logrus.Fields{"market": b.Market, "tier": b.Kind, "order_id": b.OrderID})
		switch {
		case rec.Filled():
			b.Status = models.StatusDone
			nextBuys.Put(b)
			log.Info("Buy order filled.")
		case rec.State == models.OrderStateCancel:
			b.OrderID = ""
			b.Status = models.StatusUpdate
			nextBuys.Put(b)
			log.Warn("Buy order cancelled at venue, resubmitting.")
		}
	}

	for _, s := range sells.Entries() {
		rec, ok := records[s.OrderID]
		if !ok || s.Status != models.StatusDone || s.OrderID == "" {
			continue
		}
		log := e.logEntry().WithFields(logrus.Fields{"market": s.Market, "order_id": s.OrderID})
		switch {
		case rec.Filled():
			if err := e.cancelOpenBuys(ctx, buys, s.Market); err != nil {
				log.WithError(err).Warn("Take-profit filled but open buys remain, closing next cycle.")
				continue
			}
			nextBuys.RemoveMarket(s.Market)
			delete(nextSells, s.Market)
			log.Info("Take-profit filled, ladder closed.")
		case rec.State == models.OrderStateCancel:
			s.OrderID = ""
			s.Status = models.StatusUpdate
			nextSells[s.Market] = s
			log.Warn("Sell order cancelled at venue, resubmitting.")
		}
	}

	return nextBuys, nextSells
}

// cancelOpenBuys cancels the market's buy orders still resting at the venue.
// Every order is attempted; the first failure is returned.
func (e *Executor) cancelOpenBuys(ctx context.Context, buys ladder.BuyLedger, market string) error {
	var firstErr error
	for _, b := range buys.Entries() {
		if b.Market != market || b.Status != models.StatusWait || b.OrderID == "" {
			continue
		}
		if err := e.cancelStale(ctx, b.OrderID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
