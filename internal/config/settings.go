package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"ladderbot/internal/models"
	"ladderbot/internal/tick"
)

// ErrInvalidSetting marks a settings file the ladders cannot run with.
var ErrInvalidSetting = errors.New("invalid setting")

// LoadSettings reads the per-market rows under the "settings" key. The file
// is read on every call so edits apply on the next cycle.
func LoadSettings(path string) ([]models.Setting, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidSetting, path, err)
	}

	if !v.IsSet("settings") {
		return nil, fmt.Errorf("%w: %s has no settings list", ErrInvalidSetting, path)
	}

	var settings []models.Setting
	if err := v.UnmarshalKey("settings", &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func ValidateSettings(settings []models.Setting) error {
	seen := make(map[string]struct{}, len(settings))
	for i, s := range settings {
		var problems []string
		if !strings.HasPrefix(s.Market, tick.QuoteCurrency+"-") {
			problems = append(problems, "market")
		}
		if s.UnitSize <= 0 {
			problems = append(problems, "unit_size")
		}
		if s.SmallFlowPct <= 0 || s.SmallFlowPct >= 1 {
			problems = append(problems, "small_flow_pct")
		}
		if s.SmallFlowUnits < 1 {
			problems = append(problems, "small_flow_units")
		}
		if s.LargeFlowPct <= 0 || s.LargeFlowPct >= 1 {
			problems = append(problems, "large_flow_pct")
		}
		if s.LargeFlowUnits < 1 {
			problems = append(problems, "large_flow_units")
		}
		if s.TakeProfitPct <= 0 {
			problems = append(problems, "take_profit_pct")
		}
		if len(problems) > 0 {
			return fmt.Errorf("%w: row %d (%q): bad %s", ErrInvalidSetting, i, s.Market, strings.Join(problems, ", "))
		}

		if _, dup := seen[s.Market]; dup {
			return fmt.Errorf("%w: market %s listed twice", ErrInvalidSetting, s.Market)
		}
		seen[s.Market] = struct{}{}
	}
	return nil
}
