package store

import "time"

const (
	TableBuyOrders      = "buy_orders"
	TableSellOrders     = "sell_orders"
	TableBacktestResult = "backtest_result"
)

// OrderModel is one resolved venue order. buy_orders and sell_orders share
// its columns through BuyOrderModel and SellOrderModel.
type OrderModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UUID            string    `gorm:"column:uuid;size:64;uniqueIndex"`
	Identifier      string    `gorm:"column:identifier;size:64"`
	Market          string    `gorm:"column:market;size:32;index"`
	Side            string    `gorm:"column:side;size:8"`
	OrdType         string    `gorm:"column:ord_type;size:16"`
	State           string    `gorm:"column:state;size:16"`
	Price           float64   `gorm:"column:price"`
	Volume          float64   `gorm:"column:volume"`
	RemainingVolume float64   `gorm:"column:remaining_volume"`
	ExecutedVolume  float64   `gorm:"column:executed_volume"`
	PaidFee         float64   `gorm:"column:paid_fee"`
	Locked          float64   `gorm:"column:locked"`
	TradesCount     int       `gorm:"column:trades_count"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	InsertedAt      time.Time `gorm:"column:inserted_at;autoCreateTime"`
}

type BuyOrderModel struct {
	OrderModel
}

func (BuyOrderModel) TableName() string { return TableBuyOrders }

type SellOrderModel struct {
	OrderModel
}

func (SellOrderModel) TableName() string { return TableSellOrders }

type BacktestResultModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID          string    `gorm:"column:run_id;size:64;index"`
	Time           time.Time `gorm:"column:time"`
	Market         string    `gorm:"column:market;size:32"`
	Open           float64   `gorm:"column:open"`
	High           float64   `gorm:"column:high"`
	Low            float64   `gorm:"column:low"`
	Close          float64   `gorm:"column:close"`
	Signal         string    `gorm:"column:signal;size:255"`
	TradeAmount    float64   `gorm:"column:trade_amount"`
	TradeFee       float64   `gorm:"column:trade_fee"`
	AvgPrice       float64   `gorm:"column:avg_price"`
	GapPct         float64   `gorm:"column:gap_pct"`
	TotalBuyAmount float64   `gorm:"column:total_buy_amount"`
	RealizedPnL    float64   `gorm:"column:realized_pnl"`
	Cash           float64   `gorm:"column:cash"`
	TotalFee       float64   `gorm:"column:total_fee"`
	PortfolioValue float64   `gorm:"column:portfolio_value"`
}

func (BacktestResultModel) TableName() string { return TableBacktestResult }
