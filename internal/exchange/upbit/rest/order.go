package rest

import (
	"context"
	"net/http"
	"net/url"

	"ladderbot/internal/exchange"
	"ladderbot/internal/models"
)

func (c *Client) PlaceOrder(ctx context.Context, order models.Order) (models.OrderRecord, error) {
	body := map[string]string{
		"market":   order.Market,
		"side":     string(order.Side),
		"ord_type": string(order.Type),
	}

	switch order.Type {
	case models.OrderTypePrice:
		body["price"] = formatNumber(order.Amount)
	case models.OrderTypeMarket:
		body["volume"] = formatNumber(order.Volume)
	default:
		body["price"] = formatNumber(order.Price)
		body["volume"] = formatNumber(order.Volume)
	}
	if order.Identifier != "" {
		body["identifier"] = order.Identifier
	}

	var resp orderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/orders", nil, body, true, &resp); err != nil {
		return models.OrderRecord{}, err
	}
	if resp.UUID == "" {
		return models.OrderRecord{}, exchange.ErrNoOrderID
	}

	c.log.WithOrderID(resp.UUID).WithField("component", "upbit_rest").WithField("market", order.Market).Debug("Order accepted.")
	return resp.record(), nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (models.OrderRecord, error) {
	params := url.Values{}
	params.Set("uuid", orderID)

	var resp orderResponse
	if err := c.doRequest(ctx, http.MethodDelete, "/v1/order", params, nil, true, &resp); err != nil {
		return models.OrderRecord{}, err
	}
	return resp.record(), nil
}

// GetOrderResults looks orders up in batches. Ids the venue does not know
// are absent from the result.
func (c *Client) GetOrderResults(ctx context.Context, orderIDs []string) ([]models.OrderRecord, error) {
	var records []models.OrderRecord
	for start := 0; start < len(orderIDs); start += c.batchSize {
		end := min(start+c.batchSize, len(orderIDs))

		params := url.Values{}
		for _, id := range orderIDs[start:end] {
			params.Add("uuids[]", id)
		}

		var resp []orderResponse
		if err := c.doRequest(ctx, http.MethodGet, "/v1/orders/uuids", params, nil, true, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp {
			records = append(records, item.record())
		}
	}
	return records, nil
}
