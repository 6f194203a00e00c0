// Package memory keeps auctions and bids in process memory. It backs the
// server when no database is configured and serves as a fast fake in tests.
package memory

import (
	"sync"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

type bidKey struct {
	auctionID int64
	name      string
	round     int
}

// Store is the shared state behind the auction and bid repositories.
//
// mu guards the maps. gate serializes units of work: plain repository calls
// share it, a transaction holds it exclusively so its rollback cannot wipe
// somebody else's write.
type Store struct {
	gate     sync.RWMutex
	mu       sync.RWMutex
	nextID   int64
	auctions map[int64]models.Auction
	bids     map[bidKey]models.Bid
}

func NewStore() *Store {
	return &Store{
		auctions: make(map[int64]models.Auction),
		bids:     make(map[bidKey]models.Bid),
	}
}

// Snapshot is a deep copy of the store contents.
type Snapshot struct {
	nextID   int64
	auctions map[int64]models.Auction
	bids     map[bidKey]models.Bid
}

// Snapshot copies the current state so that a failed unit of work can be
// rolled back with Restore.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		nextID:   s.nextID,
		auctions: make(map[int64]models.Auction, len(s.auctions)),
		bids:     make(map[bidKey]models.Bid, len(s.bids)),
	}
	for k, v := range s.auctions {
		snap.auctions[k] = v
	}
	for k, v := range s.bids {
		snap.bids[k] = v
	}
	return snap
}

func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.auctions = snap.auctions
	s.bids = snap.bids
}

func (s *Store) enter(tx bool) func() {
	if tx {
		return func() {}
	}
	s.gate.RLock()
	return s.gate.RUnlock
}

// Tx runs fn with repositories that see an isolated store. If fn returns an
// error or panics every change it made is undone.
func (s *Store) Tx(fn func(auctions *AuctionRepository, bids *BidRepository) error) (err error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	snap := s.Snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.Restore(snap)
			panic(p)
		}
		if err != nil {
			s.Restore(snap)
		}
	}()

	return fn(&AuctionRepository{s: s, tx: true}, &BidRepository{s: s, tx: true})
}

// Auctions returns an auctions.Repository over the store.
func (s *Store) Auctions() *AuctionRepository {
	return &AuctionRepository{s: s}
}

// Bids returns a bids.Repository over the store.
func (s *Store) Bids() *BidRepository {
	return &BidRepository{s: s}
}
