// Package exchangetest provides an in-memory exchange.Client for tests.
package exchangetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ladderbot/internal/exchange"
	"ladderbot/internal/models"
)

// Fake records every call. Hooks, when set, replace the default behaviour of
// accepting orders and returning them in state wait.
type Fake struct {
	mu sync.Mutex

	Prices   map[string]float64
	Accounts []models.Account
	Candles  map[string][]models.Candle
	Records  map[string]models.OrderRecord

	PlaceHook  func(models.Order) (models.OrderRecord, error)
	CancelHook func(string) (models.OrderRecord, error)
	PriceErr   map[string]error
	ResultsErr error

	Placed    []models.Order
	Cancelled []string
	Lookups   [][]string

	seq int
}

var _ exchange.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Prices:  map[string]float64{},
		Candles: map[string][]models.Candle{},
		Records: map[string]models.OrderRecord{},
	}
}

func (f *Fake) GetCurrentAskPrice(_ context.Context, market string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.PriceErr[market]; err != nil {
		return 0, err
	}
	price, ok := f.Prices[market]
	if !ok {
		return 0, &exchange.APIError{Status: 404, Name: "market_not_found", Message: market}
	}
	return price, nil
}

func (f *Fake) GetMinuteCandles(_ context.Context, market string, _ int, count int, to time.Time) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	series := f.Candles[market]
	var out []models.Candle
	for i := len(series) - 1; i >= 0 && len(out) < count; i-- {
		if to.IsZero() || series[i].Time.Before(to) {
			out = append(out, series[i])
		}
	}
	return out, nil
}

func (f *Fake) GetAccounts(context.Context) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Account(nil), f.Accounts...), nil
}

func (f *Fake) PlaceOrder(_ context.Context, order models.Order) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Placed = append(f.Placed, order)
	if f.PlaceHook != nil {
		rec, err := f.PlaceHook(order)
		if err == nil && rec.UUID != "" {
			f.Records[rec.UUID] = rec
		}
		return rec, err
	}
	f.seq++
	rec := models.OrderRecord{
		UUID:       fmt.Sprintf("order-%d", f.seq),
		Identifier: order.Identifier,
		Market:     order.Market,
		Side:       order.Side,
		Type:       order.Type,
		State:      models.OrderStateWait,
		Price:      order.Price,
		Volume:     order.Volume,
	}
	f.Records[rec.UUID] = rec
	return rec, nil
}

func (f *Fake) CancelOrder(_ context.Context, orderID string) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cancelled = append(f.Cancelled, orderID)
	if f.CancelHook != nil {
		return f.CancelHook(orderID)
	}
	rec, ok := f.Records[orderID]
	if !ok {
		return models.OrderRecord{}, &exchange.APIError{Status: 404, Name: "order_not_found", Message: orderID}
	}
	rec.State = models.OrderStateCancel
	f.Records[orderID] = rec
	return rec, nil
}

func (f *Fake) GetOrderResults(_ context.Context, ids []string) ([]models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups = append(f.Lookups, append([]string(nil), ids...))
	if f.ResultsErr != nil {
		return nil, f.ResultsErr
	}
	var out []models.OrderRecord
	for _, id := range ids {
		if rec, ok := f.Records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SetState changes a known order's state, as a fill or cancel at the venue would.
func (f *Fake) SetState(orderID string, state models.OrderState, executed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.Records[orderID]
	rec.UUID = orderID
	rec.State = state
	rec.ExecutedVolume = executed
	f.Records[orderID] = rec
}

// Calls returns how many orders were placed and cancelled.
func (f *Fake) Calls() (placed, cancelled int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Placed), len(f.Cancelled)
}
