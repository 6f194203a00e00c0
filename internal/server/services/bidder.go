package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
)

// BidderService runs the commands bidders issue with an auction token:
// joining, renaming, bidding, closing a round and toggling peek. Every
// successful write is followed by a nudge on the bus.
type BidderService struct {
	repomanager repomanager.RepositoryManager
	bus         notify.Publisher
	logger      logging.Logger
	now         func() time.Time
}

func NewBidderService(m repomanager.RepositoryManager, bus notify.Publisher, logger logging.Logger) *BidderService {
	return &BidderService{
		repomanager: m,
		bus:         bus,
		logger:      logger.With("module", "bidders"),
		now:         time.Now,
	}
}

func (s *BidderService) auction(ctx context.Context, token string) (*models.Auction, error) {
	a, err := s.repomanager.Auctions().GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("auction lookup: %w", err)
	}
	return a, nil
}

func (s *BidderService) view(ctx context.Context, token string) (*View, error) {
	a, err := s.auction(ctx, token)
	if err != nil {
		return nil, err
	}
	return loadView(ctx, s.repomanager, a)
}

// State returns the auction as viewer may see it. Without peek the open
// round of everybody else is hidden.
func (s *BidderService) State(ctx context.Context, token, viewer string) (*View, error) {
	v, err := s.view(ctx, token)
	if err != nil {
		return nil, err
	}
	if !v.Auction.Peek {
		v.State = v.State.Redact(viewer)
	}
	return v, nil
}

// SubmitBid stores amount as name's bid for the current round. The auction
// row stays locked from reading the round until the bid is written, so a
// concurrent round close cannot slip in between.
func (s *BidderService) SubmitBid(ctx context.Context, token, name, amount string) (*View, error) {
	value, err := models.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	a, err := s.auction(ctx, token)
	if err != nil {
		return nil, err
	}

	var round int
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.Repositories) error {
		locked, err := tx.Auctions().LockByID(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("auction lookup: %w", err)
		}
		v, err := loadView(ctx, tx, locked)
		if err != nil {
			return err
		}
		if !hasBidder(v.State, name) {
			return fmt.Errorf("bidder %q: %w", name, common.ErrorNotFound)
		}

		now := s.now()
		round = v.State.CurrentRound
		bid := &models.Bid{AuctionID: a.ID, Name: name, Round: round, Amount: value, Time: now}
		if err := tx.Bids().Put(ctx, bid); err != nil {
			return fmt.Errorf("submit bid: %w", err)
		}

		if v, err = loadView(ctx, tx, locked); err != nil {
			return err
		}
		return settleAuto(ctx, tx, v, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "bid submitted", "auction", a.ID, "bidder", name, "round", round)
	s.bus.Publish(ctx, a.ID, notify.BidSubmitted)

	return s.State(ctx, token, name)
}

func (s *BidderService) RegisterBidder(ctx context.Context, token, name string) (*View, error) {
	a, err := s.auction(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Bids().Register(ctx, a.ID, name, s.now()); err != nil {
		return nil, fmt.Errorf("register bidder: %w", err)
	}
	s.logger.Info(ctx, "bidder added", "auction", a.ID, "bidder", name)
	s.bus.Publish(ctx, a.ID, notify.BidderAdded)

	return s.State(ctx, token, name)
}

func (s *BidderService) RenameBidder(ctx context.Context, token, oldName, newName string) (*View, error) {
	a, err := s.auction(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Bids().Rename(ctx, a.ID, oldName, newName); err != nil {
		return nil, fmt.Errorf("rename bidder: %w", err)
	}
	s.logger.Info(ctx, "bidder renamed", "auction", a.ID, "from", oldName, "to", newName)
	s.bus.Publish(ctx, a.ID, notify.BidderRenamed)

	return s.State(ctx, token, newName)
}

// CloseRound closes the current round by hand if the auction's round end
// mode allows it right now. Two concurrent closes cannot both advance: the
// write only succeeds while last_round is still below the new value.
func (s *BidderService) CloseRound(ctx context.Context, token, requestedBy string) (*View, error) {
	v, err := s.view(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := rounds.CheckClose(v.Auction.RoundEndMode, v.State); err != nil {
		return nil, err
	}

	target := rounds.CloseTarget(v.State)
	if err := s.repomanager.Auctions().AdvanceLastRound(ctx, v.Auction.ID, target, s.now()); err != nil {
		return nil, fmt.Errorf("close round %d: %w", v.State.CurrentRound, err)
	}
	s.logger.Info(ctx, "round closed", "auction", v.Auction.ID, "round", v.State.CurrentRound, "by", requestedBy)
	s.bus.Publish(ctx, v.Auction.ID, notify.RoundClosed)

	return s.State(ctx, token, requestedBy)
}

func (s *BidderService) TogglePeek(ctx context.Context, token string) (*View, error) {
	a, err := s.auction(ctx, token)
	if err != nil {
		return nil, err
	}
	peek, err := s.repomanager.Auctions().TogglePeek(ctx, a.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("toggle peek: %w", err)
	}
	s.logger.Info(ctx, "peek toggled", "auction", a.ID, "peek", peek)
	s.bus.Publish(ctx, a.ID, notify.PeekToggled)

	return s.State(ctx, token, "")
}

// Lookup resolves a bidding token.
func (s *BidderService) Lookup(ctx context.Context, token string) (*models.Auction, error) {
	return s.auction(ctx, token)
}
