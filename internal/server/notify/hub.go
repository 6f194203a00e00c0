// Package notify is the live-update bus. A Hub keeps one topic per auction;
// sessions subscribe to the auction they display and get a nudge after every
// committed change so they can reload it.
package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/google/uuid"
)

// Publisher is what the services need from the bus.
type Publisher interface {
	Publish(ctx context.Context, auctionID int64, hint string)
	// CloseAuction ends every session of an auction that no longer exists.
	CloseAuction(auctionID int64)
}

// DefaultBuffer is the per-subscription queue length used when none is set.
const DefaultBuffer = 16

// Hub is the connection registry. The zero value is not usable; use NewHub.
type Hub struct {
	mu     sync.RWMutex
	topics map[int64]map[uuid.UUID]*Subscription
	buffer int
	logger logging.Logger
}

func NewHub(buffer int, logger logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		topics: make(map[int64]map[uuid.UUID]*Subscription),
		buffer: buffer,
		logger: logger.With("module", "notify"),
	}
}

// Subscription is one session's place on an auction topic.
type Subscription struct {
	ID        uuid.UUID
	AuctionID int64

	hub  *Hub
	ch   chan api.Nudge
	once sync.Once
}

// C delivers the nudges. It is closed by Close.
func (s *Subscription) C() <-chan api.Nudge {
	return s.ch
}

// Close leaves the topic. No message is delivered after Close returns. It
// is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Subscribe registers a new session on the auction's topic.
func (h *Hub) Subscribe(auctionID int64) *Subscription {
	s := &Subscription{
		ID:        uuid.New(),
		AuctionID: auctionID,
		hub:       h,
		ch:        make(chan api.Nudge, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[auctionID]
	if !ok {
		topic = make(map[uuid.UUID]*Subscription)
		h.topics[auctionID] = topic
	}
	topic[s.ID] = s
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic := h.topics[s.AuctionID]
	delete(topic, s.ID)
	if len(topic) == 0 {
		delete(h.topics, s.AuctionID)
	}
}

// Publish nudges every session subscribed to the auction, the publisher's
// own included. It never blocks: a session whose queue is full misses the
// nudge, which is logged and otherwise ignored.
func (h *Hub) Publish(ctx context.Context, auctionID int64, hint string) {
	msg := api.Nudge{AuctionID: auctionID, Hint: hint}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, s := range h.topics[auctionID] {
		select {
		case s.ch <- msg:
		default:
			h.logger.Warn(ctx, common.ErrNotification.Error()+": subscriber queue full, nudge dropped",
				"auction", auctionID, "session", id.String(), "hint", hint)
		}
	}
}

// Subscribers is the number of sessions on the auction's topic.
func (h *Hub) Subscribers(auctionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[auctionID])
}

// CloseAuction disconnects every session of the auction, e.g. after it was
// deleted.
func (h *Hub) CloseAuction(auctionID int64) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.topics[auctionID]))
	for _, s := range h.topics[auctionID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		s.Close()
	}
}

var _ Publisher = (*Hub)(nil)
