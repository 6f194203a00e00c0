package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
)

// View is an auction together with its derived round state.
type View struct {
	Auction *models.Auction
	State   *rounds.State
}

func loadView(ctx context.Context, repos repomanager.Repositories, auction *models.Auction) (*View, error) {
	rows, err := repos.Bids().List(ctx, auction.ID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return &View{Auction: auction, State: rounds.Calculate(rows, rounds.ParamsOf(auction))}, nil
}

func hasBidder(st *rounds.State, name string) bool {
	for _, b := range st.Bidders {
		if b.Name == name {
			return true
		}
	}
	return false
}

// settleAuto records a round that Auto mode has just completed as closed, so
// that a bidder who joins later cannot reopen it. v is refreshed in place.
func settleAuto(ctx context.Context, repos repomanager.Repositories, v *View, now time.Time) error {
	a, st := v.Auction, v.State
	if a.RoundEndMode != models.Auto || !st.RoundComplete || a.LastRound >= st.CurrentRound {
		return nil
	}
	err := repos.Auctions().AdvanceLastRound(ctx, a.ID, st.CurrentRound, now)
	if errors.Is(err, common.ErrPreconditionFailed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("settle round %d: %w", st.CurrentRound-1, err)
	}
	a.LastRound = st.CurrentRound
	a.UpdatedAt = now
	return nil
}
