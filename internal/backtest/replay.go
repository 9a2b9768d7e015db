package backtest

import (
	"fmt"
	"slices"
	"time"

	"ladderbot/internal/ladder"
	"ladderbot/internal/models"
)

// Row is the portfolio state after one bar.
type Row struct {
	Time           time.Time
	Market         string
	Open           float64
	High           float64
	Low            float64
	Close          float64
	Signal         string
	Events         []Event
	TradeAmount    float64
	TradeFee       float64
	AvgPrice       float64
	GapPct         float64
	TotalBuyAmount float64
	RealizedPnL    float64
	Cash           float64
	TotalFee       float64
	PortfolioValue float64
}

type Result struct {
	Market string
	Rows   []Row
	Final  Row
}

type simulation struct {
	params  Params
	setting models.Setting
	buyer   *ladder.BuyLadder
	seller  *ladder.SellLadder

	buys  ladder.BuyLedger
	sells ladder.SellLedger

	cash        float64
	holding     float64
	boughtValue float64
	boughtQty   float64
	totalFee    float64
	realized    float64
	lastAmount  float64
	lastFee     float64

	close  float64
	events []Event
}

// Replay runs the live ladders over candles for one market. The result only
// depends on its inputs.
func Replay(params Params, setting models.Setting, candles []models.Candle) (Result, error) {
	bars := slices.Clone(candles)
	slices.SortStableFunc(bars, func(a, b models.Candle) int { return a.Time.Compare(b.Time) })

	sim := &simulation{
		params:  params,
		setting: setting,
		buyer:   ladder.NewBuyLadder(nil),
		seller:  ladder.NewSellLadder(nil),
		buys:    ladder.BuyLedger{},
		sells:   ladder.SellLedger{},
		cash:    params.InitialCash,
	}
	sim.buyer.RepriceRatio = params.RepriceRatio

	result := Result{Market: setting.Market, Rows: make([]Row, 0, len(bars))}
	for _, bar := range bars {
		row, err := sim.step(bar)
		if err != nil {
			return Result{}, fmt.Errorf("bar %s: %w", bar.Time.Format(time.RFC3339), err)
		}
		result.Rows = append(result.Rows, row)
	}
	if n := len(result.Rows); n > 0 {
		result.Final = result.Rows[n-1]
	}
	return result, nil
}

func (s *simulation) step(bar models.Candle) (Row, error) {
	s.close = bar.Close
	s.events = nil
	market := s.setting.Market
	settings := []models.Setting{s.setting}

	s.buyer.Now = func() time.Time { return bar.Time }
	buys, err := s.buyer.Update(settings, s.buys, map[string]float64{market: bar.Close})
	if err != nil {
		return Row{}, err
	}
	s.buys = buys
	s.fillBuys()

	if s.holding > 0 {
		s.exits(settings)
	}

	return s.row(bar), nil
}

func (s *simulation) fillBuys() {
	for _, e := range s.buys.Entries() {
		if e.Market != s.setting.Market {
			continue
		}
		if e.Status != models.StatusUpdate && e.Status != models.StatusWait {
			continue
		}

		e.Status = models.StatusWait
		if e.Kind == models.TierInitial || s.close <= e.TargetPrice {
			portfolio := s.cash + s.holding*s.close
			ratio := 1.0
			if portfolio > 0 {
				ratio = s.cash / portfolio
			}
			if s.cash >= e.BuyAmount && ratio >= s.params.MinCashRatio {
				fee := e.BuyAmount * s.params.FeeRate
				volume := (e.BuyAmount - fee) / e.TargetPrice
				s.cash -= e.BuyAmount
				s.totalFee += fee
				s.boughtValue += e.BuyAmount
				s.boughtQty += volume
				s.holding += volume
				s.lastAmount = e.BuyAmount
				s.lastFee = fee
				e.Status = models.StatusDone
				s.events = append(s.events, Event{Kind: EventBuy, Tier: e.Kind})
			}
		}
		s.buys.Put(e)
	}
}

func (s *simulation) exits(settings []models.Setting) {
	market := s.setting.Market
	avg := s.avgPrice()
	if avg <= 0 {
		return
	}

	change := (s.close - avg) / avg
	if change <= -s.params.StopLossPct {
		s.sell(s.holding, avg)
		s.events = append(s.events, Event{Kind: EventStopLoss, Percent: change})
		s.closePosition()
		delete(s.sells, market)
		return
	}

	for _, level := range s.params.TakeProfitLevels {
		if change < level.Gain {
			continue
		}
		s.sell(s.holding*level.Ratio, avg)
		s.events = append(s.events, Event{Kind: EventPartialSell, Percent: level.Gain, Ratio: level.Ratio})
		if s.holding <= s.params.Dust {
			s.closePosition()
			return
		}
		break
	}

	holdings := map[string]models.Holding{
		market: {Market: market, Balance: s.holding, AvgBuyPrice: avg},
	}
	s.sells = s.seller.Update(settings, holdings, s.sells)

	entry, ok := s.sells[market]
	if ok && entry.Status == models.StatusUpdate && s.close >= entry.TargetSellPrice {
		s.sell(s.holding, avg)
		entry.Status = models.StatusDone
		s.sells[market] = entry
		s.events = append(s.events, Event{Kind: EventTakeProfit})
		s.closePosition()
	}
}

func (s *simulation) sell(volume, avg float64) {
	gross := volume * s.close
	fee := gross * s.params.FeeRate
	proceeds := gross - fee
	s.cash += proceeds
	s.totalFee += fee
	s.realized += (s.close-avg)*volume - fee
	s.holding -= volume
	s.lastAmount = proceeds
	s.lastFee = fee
}

// closePosition zeroes the holding and drops the market's buy ladder so the
// next bar plants a fresh one.
func (s *simulation) closePosition() {
	s.holding = 0
	s.boughtValue = 0
	s.boughtQty = 0
	s.buys.RemoveMarket(s.setting.Market)
}

func (s *simulation) avgPrice() float64 {
	if s.boughtQty <= 0 {
		return 0
	}
	return s.boughtValue / s.boughtQty
}

func (s *simulation) row(bar models.Candle) Row {
	avg := s.avgPrice()
	gap := 0.0
	if avg > 0 {
		gap = ladder.Round((s.close-avg)/avg*100, 2)
	}
	return Row{
		Time:           bar.Time,
		Market:         s.setting.Market,
		Open:           bar.Open,
		High:           bar.High,
		Low:            bar.Low,
		Close:          bar.Close,
		Signal:         RenderEvents(s.events),
		Events:         s.events,
		TradeAmount:    ladder.Round(s.lastAmount, 2),
		TradeFee:       ladder.Round(s.lastFee, 2),
		AvgPrice:       ladder.Round(avg, 2),
		GapPct:         gap,
		TotalBuyAmount: ladder.Round(s.boughtValue, 2),
		RealizedPnL:    ladder.Round(s.realized, 2),
		Cash:           ladder.Round(s.cash, 2),
		TotalFee:       ladder.Round(s.totalFee, 2),
		PortfolioValue: ladder.Round(s.cash+s.holding*s.close, 2),
	}
}
