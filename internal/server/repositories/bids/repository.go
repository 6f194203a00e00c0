package bids

import (
	"context"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// Repository is the bid store. Every method is a single atomic write or read.
type Repository interface {
	// Put upserts the row for (AuctionID, Name, Round).
	Put(ctx context.Context, bid *models.Bid) error
	// Register inserts the round-0 marker; ErrDuplicateBidder if present.
	Register(ctx context.Context, auctionID int64, name string, now time.Time) error
	// Rename moves every row of oldName to newName, all or nothing.
	Rename(ctx context.Context, auctionID int64, oldName, newName string) error
	// List returns every row of the auction in no particular order.
	List(ctx context.Context, auctionID int64) ([]*models.Bid, error)
	// DeleteByAuction removes every row of the auction and reports how many.
	DeleteByAuction(ctx context.Context, auctionID int64) (int64, error)
}
