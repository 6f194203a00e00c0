package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type published struct {
	auctionID int64
	hint      string
}

type fakeBus struct {
	mu     sync.Mutex
	msgs   []published
	closed []int64
}

func (b *fakeBus) Publish(_ context.Context, auctionID int64, hint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, published{auctionID, hint})
}

func (b *fakeBus) CloseAuction(auctionID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, auctionID)
}

func (b *fakeBus) closedAuctions() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.closed...)
}

func (b *fakeBus) hints() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.msgs {
		out = append(out, m.hint)
	}
	return out
}

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repos    *repomanager.InMemoryRepositoryManager
	bus      *fakeBus
	auctions *AuctionService
	bidders  *BidderService
	bulk     *BulkService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repos: repomanager.NewInMemoryRepositoryManager(), bus: &fakeBus{}}
	f.auctions = NewAuctionService(f.repos, f.bus, logging.Nop{}, 90*24*time.Hour)
	f.bidders = NewBidderService(f.repos, f.bus, logging.Nop{})
	f.bulk = NewBulkService(f.repos, f.bus, logging.Nop{})
	clock := func() time.Time { return testNow }
	f.auctions.now, f.bidders.now, f.bulk.now = clock, clock, clock
	return f
}

func (f *fixture) create(t *testing.T, mode models.RoundEndMode, target string, bidders ...string) *models.Auction {
	t.Helper()
	a, err := f.auctions.Create(context.Background(), AuctionParams{
		Topic:  "Shared roof",
		Target: decimal.RequireFromString(target),
		Mode:   mode,
	})
	require.NoError(t, err)
	for _, name := range bidders {
		_, err := f.bidders.RegisterBidder(context.Background(), a.Token, name)
		require.NoError(t, err)
	}
	return a
}

func (f *fixture) bid(t *testing.T, a *models.Auction, name, amount string) *View {
	t.Helper()
	v, err := f.bidders.SubmitBid(context.Background(), a.Token, name, amount)
	require.NoError(t, err)
	return v
}
