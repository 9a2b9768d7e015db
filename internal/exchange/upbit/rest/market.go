package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ladderbot/internal/models"
)

func (c *Client) GetCurrentAskPrice(ctx context.Context, market string) (float64, error) {
	ticker, err := c.GetTicker(ctx, market)
	if err != nil {
		return 0, err
	}
	return ticker.AskPrice, nil
}

// GetTicker reads the best ask from the top of the order book.
func (c *Client) GetTicker(ctx context.Context, market string) (models.Ticker, error) {
	params := url.Values{}
	params.Set("markets", market)

	var resp []orderbookResponse
	if err := c.doRequest(ctx, http.MethodGet, "/v1/orderbook", params, nil, false, &resp); err != nil {
		return models.Ticker{}, err
	}

	if len(resp) == 0 || len(resp[0].OrderbookUnits) == 0 {
		return models.Ticker{}, fmt.Errorf("empty orderbook for %s", market)
	}

	return models.Ticker{
		Market:    resp[0].Market,
		AskPrice:  resp[0].OrderbookUnits[0].AskPrice,
		Timestamp: time.UnixMilli(resp[0].Timestamp),
	}, nil
}

// GetMinuteCandles returns up to count candles ending before to, newest first.
// A zero to asks for the most recent candles.
func (c *Client) GetMinuteCandles(ctx context.Context, market string, unit, count int, to time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("count", strconv.Itoa(count))
	if !to.IsZero() {
		params.Set("to", to.UTC().Format(time.RFC3339))
	}

	var resp []candleResponse
	path := "/v1/candles/minutes/" + strconv.Itoa(unit)
	if err := c.doRequest(ctx, http.MethodGet, path, params, nil, false, &resp); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(resp))
	for _, item := range resp {
		ts, err := time.ParseInLocation(candleTimeLayout, item.CandleDateTimeUTC, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad candle time %q: %w", item.CandleDateTimeUTC, err)
		}
		candles = append(candles, models.Candle{
			Time:   ts,
			Open:   item.OpeningPrice,
			High:   item.HighPrice,
			Low:    item.LowPrice,
			Close:  item.TradePrice,
			Volume: item.CandleAccTradeVolume,
		})
	}
	return candles, nil
}
