package ledgerfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderbot/internal/ladder"
	"ladderbot/internal/models"
)

func TestLoadMissingFilesIsEmpty(t *testing.T) {
	buys, sells, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, buys)
	assert.Empty(t, sells)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	buys, err := ladder.NewBuyLedger([]models.BuyEntry{
		{Time: ts, Market: "KRW-BTC", Kind: models.TierInitial, TargetPrice: 100, BuyAmount: 10000, BuyUnits: 1, OrderID: "u-1", Status: models.StatusDone},
		{Time: ts, Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: models.StatusUpdate},
	})
	require.NoError(t, err)
	sells, err := ladder.NewSellLedger([]models.SellEntry{
		{Market: "KRW-BTC", AvgBuyPrice: 100.05, Quantity: 99.95, TargetSellPrice: 102.05, Status: models.StatusUpdate},
	})
	require.NoError(t, err)

	require.NoError(t, Save(dir, buys, sells))
	gotBuys, gotSells, err := Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(buys, gotBuys))
	assert.Empty(t, cmp.Diff(sells, gotSells))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestLoadHandEditedEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BuyFile), []byte(`
- market: KRW-XRP
  buy_type: small_flow
  target_price: 800
  buy_amount: 20000
  buy_units: 2
  filled: ""
`), 0o600))

	buys, _, err := Load(dir)
	require.NoError(t, err)
	e, ok := buys.Get("KRW-XRP", models.TierSmallFlow)
	require.True(t, ok)
	assert.Equal(t, models.StatusUnset, e.Status)
	assert.Equal(t, 800.0, e.TargetPrice)
}

func TestLoadRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"missing market": "- buy_type: initial\n  target_price: 1\n",
		"unknown tier":   "- market: KRW-BTC\n  buy_type: huge_flow\n",
		"bad number":     "- market: KRW-BTC\n  buy_type: initial\n  target_price: cheap\n",
		"duplicate":      "- market: KRW-BTC\n  buy_type: initial\n- market: KRW-BTC\n  buy_type: initial\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, BuyFile), []byte(body), 0o600))
			_, _, err := Load(dir)
			assert.Error(t, err)
		})
	}
}
