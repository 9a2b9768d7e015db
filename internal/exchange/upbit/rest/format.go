package rest

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ladderbot/internal/models"
)

const candleTimeLayout = "2006-01-02T15:04:05"

func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parseFloatOrZero(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func (o orderResponse) record() models.OrderRecord {
	price, _ := parseFloatOrZero(o.Price)
	volume, _ := parseFloatOrZero(o.Volume)
	remaining, _ := parseFloatOrZero(o.RemainingVolume)
	executed, _ := parseFloatOrZero(o.ExecutedVolume)
	fee, _ := parseFloatOrZero(o.PaidFee)
	locked, _ := parseFloatOrZero(o.Locked)
	created, _ := time.Parse(time.RFC3339, o.CreatedAt)

	return models.OrderRecord{
		UUID:            o.UUID,
		Identifier:      o.Identifier,
		Market:          o.Market,
		Side:            models.OrderSide(o.Side),
		Type:            models.OrderType(o.OrdType),
		State:           models.OrderState(o.State),
		Price:           price,
		Volume:          volume,
		RemainingVolume: remaining,
		ExecutedVolume:  executed,
		PaidFee:         fee,
		Locked:          locked,
		TradesCount:     o.TradesCount,
		CreatedAt:       created,
	}
}
