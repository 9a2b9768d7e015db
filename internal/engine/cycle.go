package engine

import (
	"context"
	"fmt"

	"ladderbot/internal/ledgerfile"
	"ladderbot/internal/models"
)

// RunCycle performs one decision cycle: reconcile earlier orders, plan both
// ladders against fresh prices and holdings, submit, then save the ledgers.
// Configuration and ledger errors abort the cycle before anything is sent.
func (e *Engine) RunCycle(ctx context.Context) error {
	settings, err := e.loadSettings(e.cfg.Bot.SettingsFile)
	if err != nil {
		return err
	}
	if len(settings) == 0 {
		e.logEntry().Warn("No markets configured.")
		return nil
	}

	buys, sells, err := ledgerfile.Load(e.cfg.Bot.LedgerDir)
	if err != nil {
		return fmt.Errorf("load ledgers: %w", err)
	}

	buys, sells = e.exec.Reconcile(ctx, buys, sells)

	prices := e.fetchPrices(ctx, marketsOf(settings))
	if len(prices) == 0 {
		e.logEntry().Warn("No prices available, nothing planned.")
		return ledgerfile.Save(e.cfg.Bot.LedgerDir, buys, sells)
	}

	planned, err := e.buyer.Update(settings, buys, prices)
	if err != nil {
		return fmt.Errorf("buy ladder: %w", err)
	}
	buys = e.exec.ExecuteBuys(ctx, planned)

	holdings, err := e.holdings(ctx, settings)
	if err != nil {
		e.logEntry().WithError(err).Warn("Holdings unavailable, sell ladder skipped.")
		return ledgerfile.Save(e.cfg.Bot.LedgerDir, buys, sells)
	}
	sells = e.exec.ExecuteSells(ctx, e.seller.Update(settings, holdings, sells))

	if err := ledgerfile.Save(e.cfg.Bot.LedgerDir, buys, sells); err != nil {
		return fmt.Errorf("save ledgers: %w", err)
	}
	return nil
}

func marketsOf(settings []models.Setting) []string {
	markets := make([]string, 0, len(settings))
	for _, s := range settings {
		markets = append(markets, s.Market)
	}
	return markets
}
