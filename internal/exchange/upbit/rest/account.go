package rest

import (
	"context"
	"fmt"
	"net/http"

	"ladderbot/internal/models"
)

func (c *Client) GetAccounts(ctx context.Context) ([]models.Account, error) {
	var resp []accountResponse
	if err := c.doRequest(ctx, http.MethodGet, "/v1/accounts", nil, nil, true, &resp); err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(resp))
	for _, item := range resp {
		balance, err := parseFloatOrZero(item.Balance)
		if err != nil {
			return nil, fmt.Errorf("bad balance for %s: %w", item.Currency, err)
		}
		locked, err := parseFloatOrZero(item.Locked)
		if err != nil {
			return nil, fmt.Errorf("bad locked for %s: %w", item.Currency, err)
		}
		avg, err := parseFloatOrZero(item.AvgBuyPrice)
		if err != nil {
			return nil, fmt.Errorf("bad avg_buy_price for %s: %w", item.Currency, err)
		}
		accounts = append(accounts, models.Account{
			Currency:     item.Currency,
			Balance:      balance,
			Locked:       locked,
			AvgBuyPrice:  avg,
			UnitCurrency: item.UnitCurrency,
		})
	}
	return accounts, nil
}
