package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func (w *Client) GetCurrentAskPrice(ctx context.Context, market string) (float64, error) {
	prices, err := w.AskPrices(ctx, []string{market})
	if err != nil {
		return 0, err
	}
	price, ok := prices[market]
	if !ok {
		return 0, fmt.Errorf("no snapshot for %s", market)
	}
	return price, nil
}

// AskPrices returns the best ask per market from one snapshot request.
// Markets that did not answer before the deadline are absent from the result.
func (w *Client) AskPrices(ctx context.Context, markets []string) (map[string]float64, error) {
	if len(markets) == 0 {
		return map[string]float64{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ws: %w", err)
	}
	defer conn.Close()
	conn.SetReadLimit(2 << 20)

	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)

	request := []any{
		ticketField{Ticket: uuid.NewString()},
		typeField{Type: "orderbook", Codes: markets, IsOnlySnapshot: true},
		formatField{Format: "DEFAULT"},
	}
	if err := conn.WriteJSON(request); err != nil {
		return nil, fmt.Errorf("failed to send snapshot request: %w", err)
	}

	wanted := make(map[string]struct{}, len(markets))
	for _, m := range markets {
		wanted[m] = struct{}{}
	}

	prices := make(map[string]float64, len(markets))
	for len(prices) < len(wanted) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if len(prices) > 0 {
				w.logEntry().WithError(err).WithField("missing", len(wanted)-len(prices)).Warn("Snapshot incomplete.")
				return prices, nil
			}
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}

		var msg orderbookMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			w.logEntry().WithError(err).Warn("Failed to decode ws message.")
			continue
		}
		if _, ok := wanted[msg.Code]; !ok || len(msg.OrderbookUnits) == 0 {
			continue
		}
		prices[msg.Code] = msg.OrderbookUnits[0].AskPrice
	}

	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return prices, nil
}
