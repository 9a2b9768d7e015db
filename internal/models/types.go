package models

import "time"

type OrderSide string
type OrderType string
type OrderState string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"

	// OrderTypePrice is a market buy sized by quote amount.
	OrderTypePrice  OrderType = "price"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"

	OrderStateWait   OrderState = "wait"
	OrderStateWatch  OrderState = "watch"
	OrderStateDone   OrderState = "done"
	OrderStateCancel OrderState = "cancel"
)

// Order is a submission request. Amount is only used with OrderTypePrice,
// Price and Volume with OrderTypeLimit.
type Order struct {
	Market     string    `json:"market"`
	Side       OrderSide `json:"side"`
	Type       OrderType `json:"ord_type"`
	Price      float64   `json:"price,omitempty"`
	Volume     float64   `json:"volume,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
}

// OrderRecord is the venue's view of an order after submission.
type OrderRecord struct {
	UUID            string     `json:"uuid"`
	Identifier      string     `json:"identifier"`
	Market          string     `json:"market"`
	Side            OrderSide  `json:"side"`
	Type            OrderType  `json:"ord_type"`
	State           OrderState `json:"state"`
	Price           float64    `json:"price"`
	Volume          float64    `json:"volume"`
	RemainingVolume float64    `json:"remaining_volume"`
	ExecutedVolume  float64    `json:"executed_volume"`
	PaidFee         float64    `json:"paid_fee"`
	Locked          float64    `json:"locked"`
	TradesCount     int        `json:"trades_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r OrderRecord) Terminal() bool {
	return r.State == OrderStateDone || r.State == OrderStateCancel
}

// Filled reports a completed fill. Market-style orders close as cancel once
// the leftover quote amount is too small to trade, so an executed cancel of
// those counts as filled.
func (r OrderRecord) Filled() bool {
	if r.State == OrderStateDone {
		return true
	}
	return r.State == OrderStateCancel && r.ExecutedVolume > 0 &&
		(r.Type == OrderTypePrice || r.Type == OrderTypeMarket)
}

type Ticker struct {
	Market    string    `json:"market"`
	AskPrice  float64   `json:"ask_price"`
	Timestamp time.Time `json:"timestamp"`
}

type Account struct {
	Currency     string  `json:"currency"`
	Balance      float64 `json:"balance"`
	Locked       float64 `json:"locked"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	UnitCurrency string  `json:"unit_currency"`
}

// Holding is a non-quote position derived from account state.
type Holding struct {
	Market      string
	Balance     float64
	Locked      float64
	AvgBuyPrice float64
}

// Quantity counts coins locked by a live take-profit order as held.
func (h Holding) Quantity() float64 {
	return h.Balance + h.Locked
}

type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
