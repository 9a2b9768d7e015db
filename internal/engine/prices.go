package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// snapshotSource answers many markets in one request.
type snapshotSource interface {
	AskPrices(ctx context.Context, markets []string) (map[string]float64, error)
}

// fetchPrices returns the current ask for every market that answered. A
// market that fails is logged and left out.
func (e *Engine) fetchPrices(ctx context.Context, markets []string) map[string]float64 {
	if src, ok := e.prices.(snapshotSource); ok {
		prices, err := src.AskPrices(ctx, markets)
		if err == nil {
			return prices
		}
		e.logEntry().WithError(err).Warn("Snapshot failed, falling back to single requests.")
	}

	asks := make([]float64, len(markets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Bot.PriceWorkers, 1))
	for i, market := range markets {
		i, market := i, market
		g.Go(func() error {
			price, err := withRetry(gctx, e, func() (float64, error) {
				return e.prices.GetCurrentAskPrice(gctx, market)
			})
			if err != nil {
				e.logEntry().WithError(err).WithField("market", market).Warn("Price unavailable.")
				return nil
			}
			asks[i] = price
			return nil
		})
	}
	_ = g.Wait()

	prices := make(map[string]float64, len(markets))
	for i, market := range markets {
		if asks[i] > 0 {
			prices[market] = asks[i]
		}
	}
	return prices
}
