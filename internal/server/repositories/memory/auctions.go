package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/auctions"
)

type AuctionRepository struct {
	s  *Store
	tx bool
}

var _ auctions.Repository = (*AuctionRepository)(nil)

func (r *AuctionRepository) Create(_ context.Context, a *models.Auction) (*models.Auction, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.auctions {
		if existing.Token == a.Token || existing.ConfigToken == a.ConfigToken {
			return nil, fmt.Errorf("%w: duplicate auction token", common.ErrorStorage)
		}
	}
	r.s.nextID++
	a.ID = r.s.nextID
	r.s.auctions[a.ID] = *a
	return a, nil
}

func (r *AuctionRepository) GetByID(_ context.Context, id int64) (*models.Auction, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.auctions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

// LockByID is GetByID: inside Store.Tx the whole store is already held.
func (r *AuctionRepository) LockByID(ctx context.Context, id int64) (*models.Auction, error) {
	return r.GetByID(ctx, id)
}

func (r *AuctionRepository) GetByToken(_ context.Context, token string) (*models.Auction, error) {
	defer r.s.enter(r.tx)()
	return r.find(func(a *models.Auction) bool { return a.Token == token })
}

func (r *AuctionRepository) GetByConfigToken(_ context.Context, configToken string) (*models.Auction, error) {
	defer r.s.enter(r.tx)()
	return r.find(func(a *models.Auction) bool { return a.ConfigToken == configToken })
}

func (r *AuctionRepository) find(match func(*models.Auction) bool) (*models.Auction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.auctions {
		if match(&a) {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *AuctionRepository) Update(_ context.Context, a *models.Auction) error {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.auctions[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Topic = a.Topic
	cur.Description = a.Description
	cur.TargetAmount = a.TargetAmount
	cur.Expiration = a.Expiration
	cur.RoundEndMode = a.RoundEndMode
	cur.UpdatedAt = a.UpdatedAt
	r.s.auctions[a.ID] = cur
	return nil
}

func (r *AuctionRepository) TogglePeek(_ context.Context, id int64, now time.Time) (bool, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.auctions[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	cur.Peek = !cur.Peek
	cur.UpdatedAt = now
	r.s.auctions[id] = cur
	return cur.Peek, nil
}

func (r *AuctionRepository) AdvanceLastRound(_ context.Context, id int64, round int, now time.Time) error {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.auctions[id]
	if !ok || cur.LastRound >= round {
		return common.ErrPreconditionFailed
	}
	cur.LastRound = round
	cur.UpdatedAt = now
	r.s.auctions[id] = cur
	return nil
}

func (r *AuctionRepository) ListExpired(_ context.Context, now time.Time) ([]*models.Auction, error) {
	defer r.s.enter(r.tx)()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.Auction
	for _, a := range r.s.auctions {
		if a.Expiration.Before(now) {
			result = append(result, &a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Delete removes the auction and, like the foreign key cascade in Postgres,
// all of its bids.
func (r *AuctionRepository) Delete(_ context.Context, id int64) error {
	defer r.s.enter(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.auctions[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.auctions, id)
	for k := range r.s.bids {
		if k.auctionID == id {
			delete(r.s.bids, k)
		}
	}
	return nil
}
