package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"ladderbot/internal/backtest"
	"ladderbot/internal/config"
	"ladderbot/internal/models"
)

var ErrUnknownTable = errors.New("unknown order table")

// Store persists resolved orders and backtest rows.
type Store struct {
	db *gorm.DB
}

func Open(cfg config.StoreConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&BuyOrderModel{}, &SellOrderModel{}, &BacktestResultModel{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertOrder appends a resolved order. A second insert of the same uuid is a no-op.
func (s *Store) InsertOrder(ctx context.Context, table string, record models.OrderRecord) error {
	row := OrderModel{
		UUID:            record.UUID,
		Identifier:      record.Identifier,
		Market:          record.Market,
		Side:            string(record.Side),
		OrdType:         string(record.Type),
		State:           string(record.State),
		Price:           record.Price,
		Volume:          record.Volume,
		RemainingVolume: record.RemainingVolume,
		ExecutedVolume:  record.ExecutedVolume,
		PaidFee:         record.PaidFee,
		Locked:          record.Locked,
		TradesCount:     record.TradesCount,
		CreatedAt:       record.CreatedAt,
	}

	var value any
	switch table {
	case TableBuyOrders:
		value = &BuyOrderModel{OrderModel: row}
	case TableSellOrders:
		value = &SellOrderModel{OrderModel: row}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "uuid"}}, DoNothing: true}).
		Create(value).Error
}

// ListOrders returns a table's rows in insertion order.
func (s *Store) ListOrders(ctx context.Context, table string) ([]OrderModel, error) {
	var rows []OrderModel
	switch table {
	case TableBuyOrders:
		var buys []BuyOrderModel
		if err := s.db.WithContext(ctx).Order("id").Find(&buys).Error; err != nil {
			return nil, err
		}
		for _, r := range buys {
			rows = append(rows, r.OrderModel)
		}
	case TableSellOrders:
		var sells []SellOrderModel
		if err := s.db.WithContext(ctx).Order("id").Find(&sells).Error; err != nil {
			return nil, err
		}
		for _, r := range sells {
			rows = append(rows, r.OrderModel)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return rows, nil
}

// SaveBacktestRows stores one replay under a fresh run id and returns it.
func (s *Store) SaveBacktestRows(ctx context.Context, rows []backtest.Row) (string, error) {
	runID := uuid.NewString()
	if len(rows) == 0 {
		return runID, nil
	}
	batch := make([]BacktestResultModel, len(rows))
	for i, r := range rows {
		batch[i] = BacktestResultModel{
			RunID:          runID,
			Time:           r.Time,
			Market:         r.Market,
			Open:           r.Open,
			High:           r.High,
			Low:            r.Low,
			Close:          r.Close,
			Signal:         r.Signal,
			TradeAmount:    r.TradeAmount,
			TradeFee:       r.TradeFee,
			AvgPrice:       r.AvgPrice,
			GapPct:         r.GapPct,
			TotalBuyAmount: r.TotalBuyAmount,
			RealizedPnL:    r.RealizedPnL,
			Cash:           r.Cash,
			TotalFee:       r.TotalFee,
			PortfolioValue: r.PortfolioValue,
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(batch, 200).Error; err != nil {
		return "", fmt.Errorf("store: save backtest rows: %w", err)
	}
	return runID, nil
}

func (s *Store) BacktestRows(ctx context.Context, runID string) ([]BacktestResultModel, error) {
	var rows []BacktestResultModel
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("time").Find(&rows).Error
	return rows, err
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
