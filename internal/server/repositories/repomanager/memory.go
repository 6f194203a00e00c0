package repomanager

import (
	"context"

	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/auctions"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/bids"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/memory"
)

// InMemoryRepositoryManager keeps everything in process memory. Nothing
// survives a restart.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) Auctions() auctions.Repository {
	return m.store.Auctions()
}

func (m *InMemoryRepositoryManager) Bids() bids.Repository {
	return m.store.Bids()
}

type memTx struct {
	auctions *memory.AuctionRepository
	bids     *memory.BidRepository
}

func (t memTx) Auctions() auctions.Repository { return t.auctions }
func (t memTx) Bids() bids.Repository         { return t.bids }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	return m.store.Tx(func(a *memory.AuctionRepository, b *memory.BidRepository) error {
		return fn(ctx, memTx{auctions: a, bids: b})
	})
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}

var _ RepositoryManager = (*InMemoryRepositoryManager)(nil)
