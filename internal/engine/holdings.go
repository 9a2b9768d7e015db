package engine

import (
	"context"
	"fmt"

	"ladderbot/internal/models"
	"ladderbot/internal/tick"
)

// holdings maps account balances onto configured markets. The quote currency
// and empty balances are skipped; coins locked in open orders count as held.
func (e *Engine) holdings(ctx context.Context, settings []models.Setting) (map[string]models.Holding, error) {
	accounts, err := withRetry(ctx, e, func() ([]models.Account, error) {
		return e.client.GetAccounts(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}

	configured := make(map[string]struct{}, len(settings))
	for _, s := range settings {
		configured[s.Market] = struct{}{}
	}

	out := make(map[string]models.Holding)
	for _, acc := range accounts {
		if acc.Currency == tick.QuoteCurrency {
			continue
		}
		market := tick.QuoteCurrency + "-" + acc.Currency
		if _, ok := configured[market]; !ok {
			continue
		}
		h := models.Holding{
			Market:      market,
			Balance:     acc.Balance,
			Locked:      acc.Locked,
			AvgBuyPrice: acc.AvgBuyPrice,
		}
		if h.Quantity() <= 0 {
			continue
		}
		out[market] = h
	}
	return out, nil
}
