package auctions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// Repository stores auction records.
type Repository interface {
	Create(ctx context.Context, auction *models.Auction) (*models.Auction, error)
	GetByID(ctx context.Context, id int64) (*models.Auction, error)
	// LockByID reads the auction and, inside a transaction, holds its row
	// until commit so that bids and round closes on it are serialized.
	LockByID(ctx context.Context, id int64) (*models.Auction, error)
	GetByToken(ctx context.Context, token string) (*models.Auction, error)
	GetByConfigToken(ctx context.Context, configToken string) (*models.Auction, error)
	// Update rewrites the editable fields: topic, description, target,
	// expiration and round end mode.
	Update(ctx context.Context, auction *models.Auction) error
	// TogglePeek flips the peek flag and returns the new value.
	TogglePeek(ctx context.Context, id int64, now time.Time) (bool, error)
	// AdvanceLastRound sets last_round to round only if it is currently
	// lower. A lost race yields common.ErrPreconditionFailed.
	AdvanceLastRound(ctx context.Context, id int64, round int, now time.Time) error
	ListExpired(ctx context.Context, now time.Time) ([]*models.Auction, error)
	Delete(ctx context.Context, id int64) error
}
