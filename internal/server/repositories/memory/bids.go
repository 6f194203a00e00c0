package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/bids"
	"github.com/shopspring/decimal"
)

type BidRepository struct {
	s  *Store
	tx bool
}

var _ bids.Repository = (*BidRepository)(nil)

func (r *BidRepository) Put(_ context.Context, bid *models.Bid) error {
	defer r.s.enter(r.tx)()
	if err := bid.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.bids[bidKey{bid.AuctionID, bid.Name, bid.Round}] = *bid
	return nil
}

func (r *BidRepository) Register(_ context.Context, auctionID int64, name string, now time.Time) error {
	defer r.s.enter(r.tx)()
	if err := models.ValidateName(name); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := bidKey{auctionID, name, models.RegistrationRound}
	if _, ok := r.s.bids[key]; ok {
		return common.ErrDuplicateBidder
	}
	r.s.bids[key] = models.Bid{
		AuctionID: auctionID,
		Name:      name,
		Round:     models.RegistrationRound,
		Amount:    decimal.Zero,
		Time:      now,
	}
	return nil
}

func (r *BidRepository) Rename(_ context.Context, auctionID int64, oldName, newName string) error {
	defer r.s.enter(r.tx)()
	if err := models.ValidateName(newName); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var moving []bidKey
	for k := range r.s.bids {
		if k.auctionID != auctionID {
			continue
		}
		if k.name == newName && oldName != newName {
			return common.ErrNameConflict
		}
		if k.name == oldName {
			moving = append(moving, k)
		}
	}
	if len(moving) == 0 {
		return common.ErrorNotFound
	}
	if oldName == newName {
		return nil
	}

	for _, k := range moving {
		b := r.s.bids[k]
		delete(r.s.bids, k)
		b.Name = newName
		r.s.bids[bidKey{auctionID, newName, k.round}] = b
	}
	return nil
}

func (r *BidRepository) List(_ context.Context, auctionID int64) ([]*models.Bid, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.Bid
	for k, b := range r.s.bids {
		if k.auctionID == auctionID {
			result = append(result, &b)
		}
	}
	return result, nil
}

func (r *BidRepository) DeleteByAuction(_ context.Context, auctionID int64) (int64, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k := range r.s.bids {
		if k.auctionID == auctionID {
			delete(r.s.bids, k)
			n++
		}
	}
	return n, nil
}
