package api

import (
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
	"github.com/shopspring/decimal"
)

type StateRequest struct {
	Token  string `json:"token"`
	Viewer string `json:"viewer,omitempty"`
}

type SubmitBidRequest struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type RegisterBidderRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type RenameBidderRequest struct {
	Token   string `json:"token"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type CloseRoundRequest struct {
	Token       string `json:"token"`
	RequestedBy string `json:"requested_by,omitempty"`
}

type TogglePeekRequest struct {
	Token string `json:"token"`
}

// AuctionRequest creates an auction, or updates the one behind ConfigToken.
// Target is a decimal string; Expiration is a date (2006-01-02) or RFC 3339
// time and may be empty.
type AuctionRequest struct {
	ConfigToken  string `json:"config_token,omitempty"`
	Topic        string `json:"topic"`
	Description  string `json:"description,omitempty"`
	Target       string `json:"target"`
	Expiration   string `json:"expiration,omitempty"`
	RoundEndMode string `json:"round_end_mode,omitempty"`
}

type DeleteAuctionRequest struct {
	ConfigToken string `json:"config_token"`
}

type ExportBidsRequest struct {
	Token string `json:"token"`
}

type ImportBidsRequest struct {
	ConfigToken string `json:"config_token"`
	CSV         string `json:"csv"`
}

type WatchRequest struct {
	Token string `json:"token"`
}

// WatchMessage carries one nudge in the "A<auctionId>#<hint>" format.
type WatchMessage struct {
	Message string `json:"message"`
}

type Empty struct{}

type CSV struct {
	CSV string `json:"csv"`
}

type Auction struct {
	ID           int64               `json:"id"`
	Token        string              `json:"token"`
	ConfigToken  string              `json:"config_token,omitempty"`
	Topic        string              `json:"topic"`
	Description  string              `json:"description,omitempty"`
	Target       decimal.Decimal     `json:"target"`
	Expiration   time.Time           `json:"expiration"`
	RoundEndMode models.RoundEndMode `json:"round_end_mode"`
	Peek         bool                `json:"peek"`
	LastRound    int                 `json:"last_round"`
}

// NewAuction converts an auction record. The config token is only included
// when withConfig is set.
func NewAuction(a *models.Auction, withConfig bool) *Auction {
	out := &Auction{
		ID:           a.ID,
		Token:        a.Token,
		Topic:        a.Topic,
		Description:  a.Description,
		Target:       a.TargetAmount,
		Expiration:   a.Expiration,
		RoundEndMode: a.RoundEndMode,
		Peek:         a.Peek,
		LastRound:    a.LastRound,
	}
	if withConfig {
		out.ConfigToken = a.ConfigToken
	}
	return out
}

type RoundSum struct {
	Round  int              `json:"round"`
	Sum    *decimal.Decimal `json:"sum,omitempty"`
	Hidden bool             `json:"hidden,omitempty"`
}

type Cell struct {
	Round int             `json:"round"`
	Kind  rounds.CellKind `json:"kind"`
	// Value is the display value: negative for carried amounts.
	Value *decimal.Decimal `json:"value,omitempty"`
}

type Bidder struct {
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

type Status struct {
	Text    string          `json:"text"`
	Round   int             `json:"round,omitempty"`
	Sum     decimal.Decimal `json:"sum"`
	Percent decimal.Decimal `json:"percent"`
	Surplus decimal.Decimal `json:"surplus"`
	Reached bool            `json:"reached"`
}

// State is the round table of one auction as a session renders it.
type State struct {
	Auction       *Auction   `json:"auction"`
	CurrentRound  int        `json:"current_round"`
	MaxRound      int        `json:"max_round"`
	MissingCount  int        `json:"missing_count"`
	BidderCount   int        `json:"bidder_count"`
	RoundComplete bool       `json:"round_complete"`
	Sums          []RoundSum `json:"sums"`
	Bidders       []Bidder   `json:"bidders"`
	Status        Status     `json:"status"`
}

func NewState(a *models.Auction, st *rounds.State) *State {
	out := &State{
		Auction:       NewAuction(a, false),
		CurrentRound:  st.CurrentRound,
		MaxRound:      st.MaxRound,
		MissingCount:  st.MissingCount,
		BidderCount:   st.BidderCount,
		RoundComplete: st.RoundComplete,
		Sums:          make([]RoundSum, 0, st.MaxRound),
		Bidders:       make([]Bidder, 0, len(st.Bidders)),
		Status: Status{
			Text:    st.Status.Text,
			Round:   st.Status.Round,
			Sum:     st.Status.Sum,
			Percent: st.Status.Percent,
			Surplus: st.Status.Surplus,
			Reached: st.Status.Reached,
		},
	}

	for r := 1; r <= st.MaxRound; r++ {
		rs := RoundSum{Round: r, Hidden: st.Hidden[r]}
		if s, ok := st.Sums[r]; ok && !rs.Hidden {
			rs.Sum = &s
		}
		out.Sums = append(out.Sums, rs)
	}

	for _, b := range st.Bidders {
		row := Bidder{Name: b.Name, Cells: make([]Cell, 0, len(b.Cells))}
		for i, c := range b.Cells {
			cell := Cell{Round: i + 1, Kind: c.Kind}
			if v, ok := c.Display(); ok {
				cell.Value = &v
			}
			row.Cells = append(row.Cells, cell)
		}
		out.Bidders = append(out.Bidders, row)
	}
	return out
}
