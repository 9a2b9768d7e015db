package ladder

import (
	"github.com/sirupsen/logrus"

	"ladderbot/internal/models"
)

// SellLadder keeps a single take-profit entry per held market.
type SellLadder struct {
	Log logrus.FieldLogger
}

func NewSellLadder(log logrus.FieldLogger) *SellLadder {
	return &SellLadder{Log: orDiscard(log)}
}

// Update refreshes take-profit targets from holdings. Markets without a
// holding keep their entry untouched; removal is the caller's decision.
func (s *SellLadder) Update(settings []models.Setting, holdings map[string]models.Holding, ledger SellLedger) SellLedger {
	next := ledger.Clone()
	for _, setting := range settings {
		h, ok := holdings[setting.Market]
		if !ok {
			continue
		}
		avg := Round(h.AvgBuyPrice, 8)
		qty := Round(h.Quantity(), 8)
		target := risePrice(avg, setting.TakeProfitPct)
		log := orDiscard(s.Log).WithFields(logrus.Fields{"market": setting.Market, "target": target})

		existing, ok := next[setting.Market]
		if !ok {
			next[setting.Market] = models.SellEntry{
				Market:          setting.Market,
				AvgBuyPrice:     avg,
				Quantity:        qty,
				TargetSellPrice: target,
				Status:          models.StatusUpdate,
			}
			log.Info("Take-profit entry created.")
			continue
		}

		same := Round(existing.AvgBuyPrice, 8) == avg &&
			Round(existing.Quantity, 8) == qty &&
			Round(existing.TargetSellPrice, 2) == target
		if same {
			log.Debug("Holding unchanged, take-profit kept.")
			continue
		}

		existing.AvgBuyPrice = avg
		existing.Quantity = qty
		existing.TargetSellPrice = target
		existing.Status = models.StatusUpdate
		next[setting.Market] = existing
		log.Info("Take-profit entry repriced.")
	}
	return next
}
