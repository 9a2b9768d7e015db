package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ladderbot/internal/models"
)

var candleHeader = []string{"time", "open", "high", "low", "close", "volume"}

var resultHeader = []string{
	"time", "market", "open", "high", "low", "close", "signal",
	"trade_amount", "trade_fee", "avg_price", "gap_pct", "total_buy_amount",
	"realized_pnl", "cash", "total_fee", "portfolio_value",
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// ReadCandlesCSV reads time,open,high,low,close,volume rows. Times without a
// zone are taken as UTC.
func ReadCandlesCSV(r io.Reader) ([]models.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(candleHeader)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read candles: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], candleHeader[0]) {
		records = records[1:]
	}

	candles := make([]models.Candle, 0, len(records))
	for i, rec := range records {
		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		var vals [5]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, candleHeader[j+1], err)
			}
		}
		candles = append(candles, models.Candle{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles, nil
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(resultHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Time.UTC().Format(time.RFC3339),
			r.Market,
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			r.Signal,
			formatFloat(r.TradeAmount),
			formatFloat(r.TradeFee),
			formatFloat(r.AvgPrice),
			formatFloat(r.GapPct),
			formatFloat(r.TotalBuyAmount),
			formatFloat(r.RealizedPnL),
			formatFloat(r.Cash),
			formatFloat(r.TotalFee),
			formatFloat(r.PortfolioValue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
