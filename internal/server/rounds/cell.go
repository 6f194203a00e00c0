package rounds

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CellKind tells where a bidder's value for a round comes from.
type CellKind int

const (
	// Unset: no value for the round.
	Unset CellKind = iota
	// Committed: the bidder submitted this amount for the round.
	Committed
	// Carried: no submission for the round; the last committed amount
	// stands in for it.
	Carried
	// Hidden: another bidder's value in the open round while peek is off.
	Hidden
)

var cellKindNames = [...]string{
	Unset:     "unset",
	Committed: "committed",
	Carried:   "carried",
	Hidden:    "hidden",
}

func (k CellKind) String() string {
	if k >= Unset && k <= Hidden {
		return cellKindNames[k]
	}
	return "unknown"
}

func (k CellKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CellKind) UnmarshalText(b []byte) error {
	for i, name := range cellKindNames {
		if name == string(b) {
			*k = CellKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell kind %q", b)
}

// Cell is one bidder's value for one round.
type Cell struct {
	Kind   CellKind
	Amount decimal.Decimal
}

func CommittedCell(amount decimal.Decimal) Cell {
	return Cell{Kind: Committed, Amount: amount}
}

func CarriedCell(amount decimal.Decimal) Cell {
	return Cell{Kind: Carried, Amount: amount}
}

// HasValue reports whether the cell contributes to the round sum.
func (c Cell) HasValue() bool {
	return c.Kind == Committed || c.Kind == Carried
}

// Display is the value shown in the round table. Carried amounts are shown
// negated so they stand apart from fresh commitments; Unset and Hidden cells
// have nothing to show.
func (c Cell) Display() (decimal.Decimal, bool) {
	switch c.Kind {
	case Committed:
		return c.Amount, true
	case Carried:
		return c.Amount.Neg(), true
	default:
		return decimal.Zero, false
	}
}
