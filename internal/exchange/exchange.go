package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ladderbot/internal/models"
)

// ErrNoOrderID is returned when the venue accepted a request but the
// response carried no order identifier.
var ErrNoOrderID = errors.New("order response has no uuid")

// APIError is a rejection reported by the venue in the response body.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upbit error %d %s: %s", e.Status, e.Name, e.Message)
}

func IsOrderNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Name == "order_not_found" || apiErr.Status == 404
	}
	return false
}

func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "too_many_requests")
}

type PriceSource interface {
	GetCurrentAskPrice(ctx context.Context, market string) (float64, error)
}

type CandleSource interface {
	// GetMinuteCandles returns bars ending at or before to, newest first.
	GetMinuteCandles(ctx context.Context, market string, unit, count int, to time.Time) ([]models.Candle, error)
}

type Client interface {
	PriceSource
	CandleSource
	GetAccounts(ctx context.Context) ([]models.Account, error)
	PlaceOrder(ctx context.Context, order models.Order) (models.OrderRecord, error)
	CancelOrder(ctx context.Context, orderID string) (models.OrderRecord, error)
	GetOrderResults(ctx context.Context, orderIDs []string) ([]models.OrderRecord, error)
}
