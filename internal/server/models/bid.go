package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/shopspring/decimal"
)

// RegistrationRound marks a bidder who joined without pledging yet.
const RegistrationRound = 0

// MaxNameLength bounds bidder names.
const MaxNameLength = 64

// Bid is one row of the bid store, keyed by (AuctionID, Name, Round).
type Bid struct {
	AuctionID int64
	Name      string
	Round     int
	Amount    decimal.Decimal
	Time      time.Time
}

// IsRegistration reports whether the row is a round-0 registration marker.
func (b *Bid) IsRegistration() bool {
	return b.Round == RegistrationRound
}

// Validate enforces the value constraints of a bid row.
func (b *Bid) Validate() error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if b.Round < 0 {
		return fmt.Errorf("%w: negative round %d", common.ErrorValidation, b.Round)
	}
	if b.Round >= 1 && b.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", common.ErrorValidation, b.Amount)
	}
	return nil
}

// ValidateName rejects empty or oversized bidder names.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: empty bidder name", common.ErrorValidation)
	}
	if trimmed != name {
		return fmt.Errorf("%w: bidder name has surrounding spaces", common.ErrorValidation)
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("%w: bidder name longer than %d characters", common.ErrorValidation, MaxNameLength)
	}
	return nil
}

// ParseAmount parses a decimal amount as typed by a bidder.
// Both "10.5" and "10,5" are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", common.ErrorValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount %q", common.ErrorValidation, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", common.ErrorValidation, d)
	}
	return d, nil
}
