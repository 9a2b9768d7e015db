package ladder

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderbot/internal/models"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testSetting(market string) models.Setting {
	return models.Setting{
		Market:         market,
		UnitSize:       10000,
		SmallFlowPct:   0.05,
		SmallFlowUnits: 2,
		LargeFlowPct:   0.10,
		LargeFlowUnits: 4,
		TakeProfitPct:  0.02,
	}
}

func newTestBuyLadder() *BuyLadder {
	b := NewBuyLadder(nil)
	b.Now = func() time.Time { return fixedNow }
	return b
}

func filledInitial(market string) models.BuyEntry {
	return models.BuyEntry{
		Time: fixedNow, Market: market, Kind: models.TierInitial,
		TargetPrice: 100, BuyAmount: 10000, BuyUnits: 1, OrderID: "init-1", Status: models.StatusDone,
	}
}

func TestBuyLadder_NewMarketPlantsThreeTiers(t *testing.T) {
	b := newTestBuyLadder()
	got, err := b.Update([]models.Setting{testSetting("KRW-BTC")}, BuyLedger{}, map[string]float64{"KRW-BTC": 100})
	require.NoError(t, err)
	require.Len(t, got, 3)

	entries := got.Entries()
	for _, e := range entries {
		assert.Equal(t, models.StatusUpdate, e.Status, "tier %s", e.Kind)
		assert.Empty(t, e.OrderID)
	}

	initial, _ := got.Get("KRW-BTC", models.TierInitial)
	small, _ := got.Get("KRW-BTC", models.TierSmallFlow)
	large, _ := got.Get("KRW-BTC", models.TierLargeFlow)

	assert.Equal(t, 100.0, initial.TargetPrice)
	assert.Equal(t, 10000.0, initial.BuyAmount)
	assert.Equal(t, 1, initial.BuyUnits)
	assert.Equal(t, 95.0, small.TargetPrice)
	assert.Equal(t, 20000.0, small.BuyAmount)
	assert.Equal(t, 90.0, large.TargetPrice)
	assert.Equal(t, 40000.0, large.BuyAmount)
	assert.Greater(t, initial.TargetPrice, small.TargetPrice)
	assert.Greater(t, small.TargetPrice, large.TargetPrice)
}

func TestBuyLadder_RoundsToWholeCurrencyUnits(t *testing.T) {
	b := newTestBuyLadder()
	got, err := b.Update([]models.Setting{testSetting("KRW-XRP")}, BuyLedger{}, map[string]float64{"KRW-XRP": 1234.5})
	require.NoError(t, err)

	small, _ := got.Get("KRW-XRP", models.TierSmallFlow)
	large, _ := got.Get("KRW-XRP", models.TierLargeFlow)
	assert.Equal(t, 1173.0, small.TargetPrice) // 1172.775
	assert.Equal(t, 1111.0, large.TargetPrice) // 1111.05
}

func TestBuyLadder_ChainsFilledTier(t *testing.T) {
	ledger, err := NewBuyLedger([]models.BuyEntry{
		filledInitial("KRW-BTC"),
		{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, OrderID: "small-1", Status: models.StatusDone},
	})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 94})
	require.NoError(t, err)

	small, _ := got.Get("KRW-BTC", models.TierSmallFlow)
	assert.Equal(t, 90.0, small.TargetPrice) // round(95 * 0.95) = round(90.25)
	assert.Equal(t, models.StatusUpdate, small.Status)
	assert.Empty(t, small.OrderID)

	initial, _ := got.Get("KRW-BTC", models.TierInitial)
	assert.Equal(t, filledInitial("KRW-BTC"), initial, "initial entry must not change")
}

func TestBuyLadder_RepricesWaitingTier(t *testing.T) {
	ledger, err := NewBuyLedger([]models.BuyEntry{
		filledInitial("KRW-BTC"),
		{Market: "KRW-BTC", Kind: models.TierLargeFlow, TargetPrice: 90, BuyAmount: 40000, BuyUnits: 4, OrderID: "large-1", Status: models.StatusWait},
	})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 95})
	require.NoError(t, err)

	large, _ := got.Get("KRW-BTC", models.TierLargeFlow)
	// gap 5 > 90*0.05 = 4.5, so round((90 + 4.5) * 0.9) = round(85.05)
	assert.Equal(t, 85.0, large.TargetPrice)
	assert.Equal(t, models.StatusUpdate, large.Status)
	assert.Equal(t, "large-1", large.OrderID, "stale order id is kept so it can be cancelled")
}

func TestBuyLadder_KeepsWaitingTierWithinThreshold(t *testing.T) {
	waiting := models.BuyEntry{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: models.StatusWait}
	ledger, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), waiting})
	require.NoError(t, err)

	// gap 2 is not above 95*0.025 = 2.375
	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 97})
	require.NoError(t, err)

	small, _ := got.Get("KRW-BTC", models.TierSmallFlow)
	assert.Equal(t, waiting, small)
}

func TestBuyLadder_RepriceRatioIsTunable(t *testing.T) {
	waiting := models.BuyEntry{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: models.StatusWait}
	ledger, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), waiting})
	require.NoError(t, err)

	b := newTestBuyLadder()
	b.RepriceRatio = 0.2 // threshold 95*0.01 = 0.95
	got, err := b.Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 97})
	require.NoError(t, err)

	small, _ := got.Get("KRW-BTC", models.TierSmallFlow)
	assert.Equal(t, models.StatusUpdate, small.Status)
	assert.Equal(t, 91.0, small.TargetPrice) // round(95.95 * 0.95) = round(91.1525)
}

func TestBuyLadder_ManualEntry(t *testing.T) {
	manual := models.BuyEntry{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 93, BuyAmount: 20000, BuyUnits: 2}
	ledger, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), manual})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 99})
	require.NoError(t, err)

	small, _ := got.Get("KRW-BTC", models.TierSmallFlow)
	manual.Status = models.StatusUpdate
	assert.Equal(t, manual, small)
}

func TestBuyLadder_ManualEntryMissingFields(t *testing.T) {
	manual := models.BuyEntry{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 93}
	ledger, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), manual})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 99})
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Nil(t, got)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"buy_amount", "buy_units"}, verr.Fields)
}

func TestBuyLadder_UnexpectedStatusAbortsWholeLadder(t *testing.T) {
	ledger, err := NewBuyLedger([]models.BuyEntry{
		filledInitial("KRW-BTC"),
		{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: "partial"},
	})
	require.NoError(t, err)
	before := ledger.Clone()

	settings := []models.Setting{testSetting("KRW-ADA"), testSetting("KRW-BTC")}
	prices := map[string]float64{"KRW-ADA": 500, "KRW-BTC": 95}
	got, err := newTestBuyLadder().Update(settings, ledger, prices)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Nil(t, got)
	assert.Empty(t, cmp.Diff(before, ledger), "input ledger must not be mutated")
}

func TestBuyLadder_WaitsForInitialFill(t *testing.T) {
	initial := filledInitial("KRW-BTC")
	initial.Status = models.StatusWait
	ledger, err := NewBuyLedger([]models.BuyEntry{
		initial,
		{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: models.StatusDone},
	})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 80})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(ledger, got))
}

func TestBuyLadder_SkipsMarketWithoutPrice(t *testing.T) {
	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, BuyLedger{}, map[string]float64{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuyLadder_DoesNotMutateInput(t *testing.T) {
	ledger, err := NewBuyLedger([]models.BuyEntry{
		filledInitial("KRW-BTC"),
		{Market: "KRW-BTC", Kind: models.TierSmallFlow, TargetPrice: 95, BuyAmount: 20000, BuyUnits: 2, Status: models.StatusDone},
	})
	require.NoError(t, err)
	before := ledger.Clone()

	_, err = newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC"), testSetting("KRW-ETH")}, ledger,
		map[string]float64{"KRW-BTC": 90, "KRW-ETH": 3000000})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, ledger))
}

func TestNewBuyLedger_RejectsDuplicateKey(t *testing.T) {
	_, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), filledInitial("KRW-BTC")})
	assert.Error(t, err)
}

func TestBuyLadder_PendingSubmissionKept(t *testing.T) {
	pending := models.BuyEntry{Market: "KRW-BTC", Kind: models.TierLargeFlow, TargetPrice: 85, BuyAmount: 40000, BuyUnits: 4, Status: models.StatusUpdate}
	ledger, err := NewBuyLedger([]models.BuyEntry{filledInitial("KRW-BTC"), pending})
	require.NoError(t, err)

	got, err := newTestBuyLadder().Update([]models.Setting{testSetting("KRW-BTC")}, ledger, map[string]float64{"KRW-BTC": 99})
	require.NoError(t, err)

	large, _ := got.Get("KRW-BTC", models.TierLargeFlow)
	assert.Equal(t, pending, large)
}
