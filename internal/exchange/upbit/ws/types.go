package ws

type ticketField struct {
	Ticket string `json:"ticket"`
}

type typeField struct {
	Type           string   `json:"type"`
	Codes          []string `json:"codes"`
	IsOnlySnapshot bool     `json:"isOnlySnapshot"`
}

type formatField struct {
	Format string `json:"format"`
}

type orderbookMessage struct {
	Type           string `json:"type"`
	Code           string `json:"code"`
	Timestamp      int64  `json:"timestamp"`
	OrderbookUnits []struct {
		AskPrice float64 `json:"ask_price"`
		BidPrice float64 `json:"bid_price"`
	} `json:"orderbook_units"`
}
