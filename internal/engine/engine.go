package engine

import (
	"context"
	"fmt"
	"time"

	"ladderbot/internal/config"
	"ladderbot/internal/exchange"
	"ladderbot/internal/executor"
	"ladderbot/internal/ladder"
	"ladderbot/internal/logger"
	"ladderbot/internal/metrics"
	"ladderbot/internal/models"
)

type Engine struct {
	cfg     *config.Config
	client  exchange.Client
	prices  exchange.PriceSource
	exec    *executor.Executor
	log     *logger.Logger
	metrics *metrics.Metrics

	buyer  *ladder.BuyLadder
	seller *ladder.SellLadder

	loadSettings func(path string) ([]models.Setting, error)
	retryBase    time.Duration
	retries      int
}

// New wires an engine. prices may be nil, in which case asks come from client.
func New(cfg *config.Config, client exchange.Client, prices exchange.PriceSource, exec *executor.Executor, log *logger.Logger, m *metrics.Metrics) *Engine {
	if prices == nil {
		prices = client
	}
	buyer := ladder.NewBuyLadder(log.WithComponent("buy_ladder"))
	if cfg.Bot.RepriceRatio > 0 {
		buyer.RepriceRatio = cfg.Bot.RepriceRatio
	}

	return &Engine{
		cfg:          cfg,
		client:       client,
		prices:       prices,
		exec:         exec,
		log:          log,
		metrics:      m,
		buyer:        buyer,
		seller:       ladder.NewSellLadder(log.WithComponent("sell_ladder")),
		loadSettings: config.LoadSettings,
		retryBase:    time.Second,
		retries:      5,
	}
}

// Start runs a cycle immediately and then on every interval until ctx ends.
// A failing or panicking cycle is logged and the schedule continues.
func (e *Engine) Start(ctx context.Context) error {
	e.logEntry().WithField("interval", e.cfg.Bot.Interval).Info("Engine started.")

	ticker := time.NewTicker(e.cfg.Bot.Interval)
	defer ticker.Stop()

	for {
		e.runSafely(ctx)
		select {
		case <-ctx.Done():
			e.logEntry().Info("Engine stopped.")
			return nil
		case <-ticker.C:
		}
	}
}

func (e *Engine) runSafely(ctx context.Context) {
	started := time.Now()
	result := metrics.ResultOK
	defer func() {
		if r := recover(); r != nil {
			result = metrics.ResultPanic
			e.logEntry().WithField("panic", fmt.Sprint(r)).Error("Cycle panicked.")
		}
		e.metrics.Cycle(result, time.Since(started))
	}()

	if err := e.RunCycle(ctx); err != nil {
		result = metrics.ResultError
		e.logEntry().WithError(err).Error("Cycle failed.")
		return
	}
	e.logEntry().WithField("took", time.Since(started).Round(time.Millisecond)).Info("Cycle finished.")
}
