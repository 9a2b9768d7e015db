package ladder

import (
	"errors"
	"fmt"
	"strings"

	"ladderbot/internal/models"
)

var (
	ErrMissingFields    = errors.New("ledger entry is missing required fields")
	ErrUnexpectedStatus = errors.New("ledger entry has unexpected status")
)

// ValidationError names the fields a ledger entry is missing.
type ValidationError struct {
	Market string
	Kind   models.TierKind
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s/%s: missing %s", e.Market, e.Kind, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingFields
}

// MissingFields reports the required buy entry fields that are absent.
func MissingFields(e models.BuyEntry) []string {
	var missing []string
	if strings.TrimSpace(e.Market) == "" {
		missing = append(missing, "market")
	}
	if e.TargetPrice <= 0 {
		missing = append(missing, "target_price")
	}
	if e.BuyAmount <= 0 {
		missing = append(missing, "buy_amount")
	}
	if e.BuyUnits <= 0 {
		missing = append(missing, "buy_units")
	}
	if !e.Kind.Valid() {
		missing = append(missing, "buy_type")
	}
	return missing
}
