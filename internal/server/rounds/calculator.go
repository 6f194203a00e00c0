// Package rounds derives the state of an auction's bidding rounds from its
// bid history and decides whether a round may be closed by hand. Everything
// here is pure: callers load the rows and persist the outcome.
package rounds

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/shopspring/decimal"
)

// Params is the auction configuration the calculation depends on.
type Params struct {
	Target decimal.Decimal
	Mode   models.RoundEndMode
	// LastRound is the manual-close override, zero or negative if none.
	LastRound int
}

// ParamsOf extracts Params from an auction record.
func ParamsOf(a *models.Auction) Params {
	return Params{Target: a.TargetAmount, Mode: a.RoundEndMode, LastRound: a.LastRound}
}

// BidderRow holds one bidder's cells for rounds 1..MaxRound; Cells[0] is round 1.
type BidderRow struct {
	Name  string
	Cells []Cell
}

// Cell returns the bidder's cell for round r, Unset when out of range.
func (b *BidderRow) Cell(r int) Cell {
	if r < 1 || r > len(b.Cells) {
		return Cell{}
	}
	return b.Cells[r-1]
}

// Status compares the last closed round with the target.
type Status struct {
	Text    string
	Round   int
	Sum     decimal.Decimal
	Percent decimal.Decimal
	Surplus decimal.Decimal
	Reached bool
}

type State struct {
	// Sums maps rounds 1..MaxRound to the total of committed and carried values.
	Sums          map[int]decimal.Decimal
	Bidders       []BidderRow
	MaxRound      int
	CurrentRound  int
	MissingCount  int
	BidderCount   int
	RoundComplete bool
	Status        Status
	// Hidden lists rounds whose sum is withheld from the viewer.
	Hidden map[int]bool
}

// Calculate turns the full bid history of one auction into its round state.
func Calculate(bids []*models.Bid, p Params) *State {
	explicit := make(map[string]map[int]decimal.Decimal)
	maxRound := 0
	for _, b := range bids {
		rounds, ok := explicit[b.Name]
		if !ok {
			rounds = make(map[int]decimal.Decimal)
			explicit[b.Name] = rounds
		}
		if b.Round < 1 {
			continue
		}
		rounds[b.Round] = b.Amount
		if b.Round > maxRound {
			maxRound = b.Round
		}
	}

	names := make([]string, 0, len(explicit))
	for name := range explicit {
		names = append(names, name)
	}
	sort.Strings(names)

	// A manual close past maxRound settles that round with whatever stands,
	// carried values included.
	closedByOverride := p.LastRound > maxRound

	st := &State{
		Sums:        make(map[int]decimal.Decimal, maxRound),
		Bidders:     make([]BidderRow, 0, len(names)),
		MaxRound:    maxRound,
		BidderCount: len(names),
	}
	for r := 1; r <= maxRound; r++ {
		st.Sums[r] = decimal.Zero
	}

	for _, name := range names {
		row := BidderRow{Name: name, Cells: make([]Cell, maxRound)}
		var (
			last  decimal.Decimal
			known bool
		)
		for r := 1; r <= maxRound; r++ {
			if amount, ok := explicit[name][r]; ok {
				row.Cells[r-1] = CommittedCell(amount)
				last, known = amount, true
			} else if known {
				row.Cells[r-1] = CarriedCell(last)
			}
			if c := row.Cells[r-1]; c.HasValue() {
				st.Sums[r] = st.Sums[r].Add(c.Amount.Abs())
			}
		}

		if maxRound == 0 {
			st.MissingCount++
		} else {
			c := row.Cell(maxRound)
			if !(c.Kind == Committed || (closedByOverride && c.HasValue())) {
				st.MissingCount++
			}
		}
		st.Bidders = append(st.Bidders, row)
	}

	switch {
	case maxRound == 0:
		st.CurrentRound = 1
	case (st.MissingCount == 0 && p.Mode == models.Auto) || closedByOverride:
		st.CurrentRound = maxRound + 1
	default:
		st.CurrentRound = maxRound
	}
	st.RoundComplete = maxRound > 0 && st.CurrentRound > maxRound
	st.Status = status(st, p.Target)
	return st
}

func status(st *State, target decimal.Decimal) Status {
	closed := st.CurrentRound - 1
	if closed < 1 {
		return Status{Text: "No round closed yet"}
	}

	s := Status{Round: closed, Sum: st.Sums[closed]}
	if !target.IsPositive() {
		s.Reached = true
		s.Surplus = s.Sum
		s.Text = fmt.Sprintf("Round %d: %s collected", closed, s.Sum.StringFixed(2))
		return s
	}

	s.Percent = s.Sum.Mul(decimal.NewFromInt(100)).Div(target).Round(2)
	if s.Sum.GreaterThanOrEqual(target) {
		s.Reached = true
		s.Surplus = s.Sum.Sub(target)
		s.Text = fmt.Sprintf("Round %d: target of %s reached, surplus %s",
			closed, target.StringFixed(2), s.Surplus.StringFixed(2))
		return s
	}
	s.Text = fmt.Sprintf("Round %d: %s of %s (%s%%)",
		closed, s.Sum.StringFixed(2), target.StringFixed(2), s.Percent.String())
	return s
}

// OpenRound is the round that still accepts bids and may be hidden from
// other bidders: the current round while it is not complete.
func (st *State) OpenRound() (int, bool) {
	if st.RoundComplete || st.CurrentRound > st.MaxRound {
		return 0, false
	}
	return st.CurrentRound, true
}

// Redact returns a copy of st as the given viewer may see it while peek is
// off: in the open round only the viewer's own cell stays visible and the
// round sum is withheld. Closed rounds are left untouched.
func (st *State) Redact(viewer string) *State {
	open, ok := st.OpenRound()
	if !ok {
		return st
	}

	out := *st
	out.Sums = make(map[int]decimal.Decimal, len(st.Sums))
	for r, s := range st.Sums {
		if r != open {
			out.Sums[r] = s
		}
	}
	out.Hidden = map[int]bool{open: true}
	out.Bidders = make([]BidderRow, len(st.Bidders))
	for i, b := range st.Bidders {
		cells := make([]Cell, len(b.Cells))
		copy(cells, b.Cells)
		if b.Name != viewer && cells[open-1].HasValue() {
			cells[open-1] = Cell{Kind: Hidden}
		}
		out.Bidders[i] = BidderRow{Name: b.Name, Cells: cells}
	}
	return &out
}
