// Package ledgerfile keeps the buy and sell ledgers between cycles as YAML
// files an operator can read and edit.
package ledgerfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ladderbot/internal/ladder"
	"ladderbot/internal/models"
)

const (
	BuyFile  = "buy_ledger.yaml"
	SellFile = "sell_ledger.yaml"
)

// Load reads both ledgers from dir. Missing files are empty ledgers.
func Load(dir string) (ladder.BuyLedger, ladder.SellLedger, error) {
	var buys []models.BuyEntry
	if err := readYAML(filepath.Join(dir, BuyFile), &buys); err != nil {
		return nil, nil, err
	}
	for i, e := range buys {
		if e.Market == "" {
			return nil, nil, fmt.Errorf("%s entry %d: missing market", BuyFile, i)
		}
		if e.Kind != "" && !e.Kind.Valid() {
			return nil, nil, fmt.Errorf("%s entry %d: unknown buy_type %q", BuyFile, i, e.Kind)
		}
	}
	buyLedger, err := ladder.NewBuyLedger(buys)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", BuyFile, err)
	}

	var sells []models.SellEntry
	if err := readYAML(filepath.Join(dir, SellFile), &sells); err != nil {
		return nil, nil, err
	}
	for i, e := range sells {
		if e.Market == "" {
			return nil, nil, fmt.Errorf("%s entry %d: missing market", SellFile, i)
		}
	}
	sellLedger, err := ladder.NewSellLedger(sells)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", SellFile, err)
	}

	return buyLedger, sellLedger, nil
}

// Save writes both ledgers. Each file is replaced atomically.
func Save(dir string, buys ladder.BuyLedger, sells ladder.SellLedger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger dir: %w", err)
	}
	if err := writeYAML(filepath.Join(dir, BuyFile), buys.Entries()); err != nil {
		return err
	}
	return writeYAML(filepath.Join(dir, SellFile), sells.Entries())
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
