package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ladderbot/internal/config"
	"ladderbot/internal/exchange"
	"ladderbot/internal/logger"
	"ladderbot/internal/metrics"
	"ladderbot/internal/models"
	"ladderbot/internal/store"
)

// DefaultMinNotional is the smallest order value the venue accepts, in KRW.
const DefaultMinNotional = 5000.0

// ErrBelowMinNotional marks an entry that was not sent because its value is too small.
var ErrBelowMinNotional = errors.New("order value below minimum notional")

// Persister receives resolved orders. Failures are logged and never retried.
type Persister interface {
	InsertOrder(ctx context.Context, table string, record models.OrderRecord) error
}

type Options struct {
	MinNotional   float64
	PersistPolicy string
}

// Executor turns pending ledger entries into venue orders, one entry at a
// time. A failing entry is logged and skipped; it never stops the others.
type Executor struct {
	client      exchange.Client
	store       Persister
	log         *logger.Logger
	metrics     *metrics.Metrics
	minNotional float64
	persistAll  bool
	persisted   map[string]struct{}
}

func New(client exchange.Client, persister Persister, log *logger.Logger, m *metrics.Metrics, opts Options) *Executor {
	minNotional := opts.MinNotional
	if minNotional <= 0 {
		minNotional = DefaultMinNotional
	}
	return &Executor{
		client:      client,
		store:       persister,
		log:         log,
		metrics:     m,
		minNotional: minNotional,
		persistAll:  opts.PersistPolicy == config.PersistAll,
		persisted:   make(map[string]struct{}),
	}
}

func (e *Executor) logEntry() *logrus.Entry {
	return e.log.WithComponent("executor")
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// guard runs fn and turns a panic into an error so one entry cannot take the
// cycle down.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn()
}

// cancelStale removes the venue order a repriced entry still points at.
func (e *Executor) cancelStale(ctx context.Context, orderID string) error {
	rec, err := e.client.CancelOrder(ctx, orderID)
	if err != nil {
		if exchange.IsOrderNotFound(err) {
			e.logEntry().WithField("order_id", orderID).Info("Stale order already gone.")
			return nil
		}
		return fmt.Errorf("cancel %s: %w", orderID, err)
	}
	e.logEntry().WithField("order_id", orderID).Info("Stale order cancelled.")
	if rec.UUID != "" {
		e.persist(ctx, rec)
	}
	return nil
}

func (e *Executor) place(ctx context.Context, order models.Order) (models.OrderRecord, error) {
	rec, err := e.client.PlaceOrder(ctx, order)
	if err != nil {
		return rec, err
	}
	if rec.UUID == "" {
		return rec, exchange.ErrNoOrderID
	}
	return rec, nil
}

func (e *Executor) rejectReason(err error) string {
	var p *panicError
	switch {
	case errors.As(err, &p):
		return metrics.ReasonPanic
	case errors.Is(err, ErrBelowMinNotional):
		return metrics.ReasonMinNotional
	case errors.Is(err, exchange.ErrNoOrderID):
		return metrics.ReasonNoOrderID
	default:
		return metrics.ReasonVenue
	}
}

// persist forwards a resolved record once per order id. With the default
// policy only filled orders are kept.
func (e *Executor) persist(ctx context.Context, rec models.OrderRecord) {
	if e.store == nil || rec.UUID == "" {
		return
	}
	if e.persistAll {
		if !rec.Terminal() {
			return
		}
	} else if !rec.Filled() {
		return
	}
	if _, done := e.persisted[rec.UUID]; done {
		return
	}

	table := store.TableBuyOrders
	if rec.Side == models.OrderSideAsk {
		table = store.TableSellOrders
	}
	if err := e.store.InsertOrder(ctx, table, rec); err != nil {
		e.logEntry().WithError(err).WithField("order_id", rec.UUID).Error("Failed to persist order.")
		return
	}
	e.persisted[rec.UUID] = struct{}{}
	e.metrics.Persisted(table)
}

// results looks up ids in one batched call. A failed lookup is logged and
// yields no records; the next reconcile picks the orders up again.
func (e *Executor) results(ctx context.Context, ids []string) map[string]models.OrderRecord {
	out := make(map[string]models.OrderRecord, len(ids))
	if len(ids) == 0 {
		return out
	}
	records, err := e.client.GetOrderResults(ctx, ids)
	if err != nil {
		e.logEntry().WithError(err).WithField("orders", len(ids)).Warn("Order status lookup failed.")
		return out
	}
	for _, rec := range records {
		out[rec.UUID] = rec
		e.persist(ctx, rec)
	}
	return out
}
