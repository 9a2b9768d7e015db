package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderbot/internal/logger"
)

func newSnapshotServer(t *testing.T, asks map[string]float64) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var request []map[string]any
		if err := conn.ReadJSON(&request); err != nil {
			return
		}
		if len(request) != 3 {
			return
		}
		codes, _ := request[1]["codes"].([]any)
		conn.WriteMessage(websocket.BinaryMessage, []byte(`{"type":"status"}`))
		for _, code := range codes {
			ask, ok := asks[code.(string)]
			if !ok {
				continue
			}
			msg, _ := json.Marshal(map[string]any{
				"type":            "orderbook",
				"code":            code,
				"orderbook_units": []map[string]float64{{"ask_price": ask, "bid_price": ask - 1}},
			})
			conn.WriteMessage(websocket.BinaryMessage, msg)
		}
		conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestAskPrices(t *testing.T) {
	url := newSnapshotServer(t, map[string]float64{"KRW-BTC": 50000000, "KRW-XRP": 850})
	c := New(url, time.Second, logger.Discard())

	prices, err := c.AskPrices(context.Background(), []string{"KRW-BTC", "KRW-XRP"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"KRW-BTC": 50000000, "KRW-XRP": 850}, prices)
}

func TestAskPricesPartial(t *testing.T) {
	url := newSnapshotServer(t, map[string]float64{"KRW-BTC": 50000000})
	c := New(url, 300*time.Millisecond, logger.Discard())

	prices, err := c.AskPrices(context.Background(), []string{"KRW-BTC", "KRW-ETH"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"KRW-BTC": 50000000}, prices)
}

func TestGetCurrentAskPriceMissing(t *testing.T) {
	url := newSnapshotServer(t, map[string]float64{})
	c := New(url, 200*time.Millisecond, logger.Discard())

	_, err := c.GetCurrentAskPrice(context.Background(), "KRW-ETH")
	assert.Error(t, err)
}
