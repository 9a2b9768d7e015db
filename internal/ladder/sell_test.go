package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderbot/internal/models"
)

func TestSellLadder_CreatesEntry(t *testing.T) {
	s := NewSellLadder(nil)
	holdings := map[string]models.Holding{
		"KRW-BTC": {Market: "KRW-BTC", Balance: 0.5, Locked: 0.25, AvgBuyPrice: 100.05},
	}
	got := s.Update([]models.Setting{testSetting("KRW-BTC")}, holdings, SellLedger{})

	require.Contains(t, got, "KRW-BTC")
	entry := got["KRW-BTC"]
	assert.Equal(t, 100.05, entry.AvgBuyPrice)
	assert.Equal(t, 0.75, entry.Quantity)
	assert.Equal(t, 102.05, entry.TargetSellPrice) // 102.051
	assert.Equal(t, models.StatusUpdate, entry.Status)
}

func TestSellLadder_Idempotent(t *testing.T) {
	s := NewSellLadder(nil)
	settings := []models.Setting{testSetting("KRW-BTC")}
	holdings := map[string]models.Holding{
		"KRW-BTC": {Market: "KRW-BTC", Balance: 1.23456789, AvgBuyPrice: 96.659123456},
	}

	first := s.Update(settings, holdings, SellLedger{})
	entry := first["KRW-BTC"]
	entry.Status = models.StatusDone
	entry.OrderID = "sell-1"
	first["KRW-BTC"] = entry

	second := s.Update(settings, holdings, first)
	assert.Equal(t, entry, second["KRW-BTC"], "unchanged holding must not trigger resubmission")
}

func TestSellLadder_RepricesOnChange(t *testing.T) {
	s := NewSellLadder(nil)
	settings := []models.Setting{testSetting("KRW-BTC")}
	ledger := SellLedger{"KRW-BTC": {
		Market: "KRW-BTC", AvgBuyPrice: 100, Quantity: 1, TargetSellPrice: 102, OrderID: "sell-1", Status: models.StatusDone,
	}}
	holdings := map[string]models.Holding{"KRW-BTC": {Market: "KRW-BTC", Balance: 3, AvgBuyPrice: 95}}

	got := s.Update(settings, holdings, ledger)
	entry := got["KRW-BTC"]
	assert.Equal(t, 95.0, entry.AvgBuyPrice)
	assert.Equal(t, 3.0, entry.Quantity)
	assert.Equal(t, 96.9, entry.TargetSellPrice)
	assert.Equal(t, models.StatusUpdate, entry.Status)
	assert.Equal(t, "sell-1", entry.OrderID)
	assert.Equal(t, models.StatusDone, ledger["KRW-BTC"].Status, "input ledger must not be mutated")
}

func TestSellLadder_LeavesUnheldMarketAlone(t *testing.T) {
	s := NewSellLadder(nil)
	ledger := SellLedger{"KRW-ETH": {Market: "KRW-ETH", AvgBuyPrice: 10, Quantity: 1, TargetSellPrice: 10.2, Status: models.StatusDone}}

	got := s.Update([]models.Setting{testSetting("KRW-ETH")}, map[string]models.Holding{}, ledger)
	assert.Equal(t, ledger, got)
}
