package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// MaxTopicLength bounds auction topics.
const MaxTopicLength = 200

// AuctionParams are the editable settings of an auction.
type AuctionParams struct {
	Topic       string
	Description string
	Target      decimal.Decimal
	// Expiration defaults to now plus the configured lifetime on create and
	// stays unchanged on update when zero.
	Expiration time.Time
	Mode       models.RoundEndMode
}

func (p *AuctionParams) validate(now time.Time) error {
	topic := strings.TrimSpace(p.Topic)
	switch {
	case topic == "":
		return fmt.Errorf("%w: empty topic", common.ErrorValidation)
	case len([]rune(topic)) > MaxTopicLength:
		return fmt.Errorf("%w: topic longer than %d characters", common.ErrorValidation, MaxTopicLength)
	case p.Target.IsNegative():
		return fmt.Errorf("%w: negative target %s", common.ErrorValidation, p.Target)
	case !p.Mode.Valid():
		return fmt.Errorf("%w: unknown round end mode %d", common.ErrorValidation, int(p.Mode))
	case !p.Expiration.IsZero() && !p.Expiration.After(now):
		return fmt.Errorf("%w: expiration %s is in the past", common.ErrorValidation, p.Expiration.Format(time.DateOnly))
	}
	p.Topic = topic
	return nil
}

// AuctionService administers auctions through their config token.
type AuctionService struct {
	repomanager repomanager.RepositoryManager
	bus         notify.Publisher
	logger      logging.Logger
	lifetime    time.Duration
	now         func() time.Time
}

func NewAuctionService(m repomanager.RepositoryManager, bus notify.Publisher, logger logging.Logger, lifetime time.Duration) *AuctionService {
	return &AuctionService{
		repomanager: m,
		bus:         bus,
		logger:      logger.With("module", "auctions"),
		lifetime:    lifetime,
		now:         time.Now,
	}
}

func (s *AuctionService) Create(ctx context.Context, p AuctionParams) (*models.Auction, error) {
	now := s.now()
	if err := p.validate(now); err != nil {
		return nil, err
	}
	if p.Expiration.IsZero() {
		p.Expiration = now.Add(s.lifetime)
	}

	token, err := common.NewToken()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	configToken, err := common.NewToken()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	a, err := s.repomanager.Auctions().Create(ctx, &models.Auction{
		Token:        token,
		ConfigToken:  configToken,
		Topic:        p.Topic,
		Description:  p.Description,
		TargetAmount: p.Target,
		Expiration:   p.Expiration,
		RoundEndMode: p.Mode,
		LastRound:    models.NoLastRound,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}
	s.logger.Info(ctx, "auction created", "auction", a.ID, "mode", a.RoundEndMode.String())
	return a, nil
}

func (s *AuctionService) ByConfigToken(ctx context.Context, configToken string) (*models.Auction, error) {
	a, err := s.repomanager.Auctions().GetByConfigToken(ctx, configToken)
	if err != nil {
		return nil, fmt.Errorf("auction lookup: %w", err)
	}
	return a, nil
}

// Update rewrites the auction settings. A round that Auto mode already
// completed stays closed when the mode changes, and switching to Auto closes
// a round whose bids are all in.
func (s *AuctionService) Update(ctx context.Context, configToken string, p AuctionParams) (*models.Auction, error) {
	now := s.now()
	if err := p.validate(now); err != nil {
		return nil, err
	}

	a, err := s.ByConfigToken(ctx, configToken)
	if err != nil {
		return nil, err
	}

	var updated *models.Auction
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.Repositories) error {
		locked, err := tx.Auctions().LockByID(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("auction lookup: %w", err)
		}
		v, err := loadView(ctx, tx, locked)
		if err != nil {
			return err
		}
		if err := settleAuto(ctx, tx, v, now); err != nil {
			return err
		}

		locked.Topic = p.Topic
		locked.Description = p.Description
		locked.TargetAmount = p.Target
		locked.RoundEndMode = p.Mode
		if !p.Expiration.IsZero() {
			locked.Expiration = p.Expiration
		}
		locked.UpdatedAt = now
		if err := tx.Auctions().Update(ctx, locked); err != nil {
			return fmt.Errorf("update auction: %w", err)
		}

		if v, err = loadView(ctx, tx, locked); err != nil {
			return err
		}
		updated = locked
		return settleAuto(ctx, tx, v, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "auction updated", "auction", updated.ID)
	s.bus.Publish(ctx, updated.ID, notify.AuctionUpdated)
	return updated, nil
}

// Delete removes the auction and all of its bids in one transaction.
func (s *AuctionService) Delete(ctx context.Context, configToken string) error {
	a, err := s.ByConfigToken(ctx, configToken)
	if err != nil {
		return err
	}
	n, err := deleteAuction(ctx, s.repomanager, a.ID)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "auction deleted", "auction", a.ID, "bids", n)
	s.bus.Publish(ctx, a.ID, notify.AuctionDeleted)
	s.bus.CloseAuction(a.ID)
	return nil
}

func deleteAuction(ctx context.Context, m repomanager.RepositoryManager, id int64) (int64, error) {
	var n int64
	err := m.WithTx(ctx, func(ctx context.Context, tx repomanager.Repositories) error {
		var err error
		if n, err = tx.Bids().DeleteByAuction(ctx, id); err != nil {
			return err
		}
		return tx.Auctions().Delete(ctx, id)
	})
	if err != nil {
		return 0, fmt.Errorf("delete auction %d: %w", id, err)
	}
	return n, nil
}
