// Package bids provides the PostgreSQL-backed bid store.
package bids

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/dbx"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func dbError(err error) error {
	return fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
}

// Put upserts on the composite primary key, so concurrent submissions for
// the same key resolve inside Postgres instead of racing in the caller.
func (r *PostgresRepository) Put(ctx context.Context, bid *models.Bid) error {
	if err := bid.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO bids (auction_id, name, round, amount, time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (auction_id, name, round)
		DO UPDATE SET amount = EXCLUDED.amount, time = EXCLUDED.time
	`
	if _, err := r.db.ExecContext(ctx, query,
		bid.AuctionID, bid.Name, bid.Round, bid.Amount, bid.Time); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *PostgresRepository) Register(ctx context.Context, auctionID int64, name string, now time.Time) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO bids (auction_id, name, round, amount, time)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (auction_id, name, round) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, auctionID, name, now)
	if err != nil {
		return dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateBidder
	}
	return nil
}

// Rename is one UPDATE statement, which Postgres applies atomically. The
// NOT EXISTS guard refuses to merge into an existing bidder; if two renames
// to the same name race, the loser trips the primary key and gets
// ErrNameConflict as well.
func (r *PostgresRepository) Rename(ctx context.Context, auctionID int64, oldName, newName string) error {
	if err := models.ValidateName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return r.requireBidder(ctx, auctionID, oldName)
	}

	query := `
		UPDATE bids SET name = $3
		WHERE auction_id = $1 AND name = $2
		  AND NOT EXISTS (SELECT 1 FROM bids WHERE auction_id = $1 AND name = $3)
	`
	res, err := r.db.ExecContext(ctx, query, auctionID, oldName, newName)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrNameConflict
		}
		return dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing moved: tell the two failure causes apart.
	taken, err := r.exists(ctx, auctionID, newName)
	if err != nil {
		return err
	}
	if taken {
		return common.ErrNameConflict
	}
	return common.ErrorNotFound
}

func (r *PostgresRepository) requireBidder(ctx context.Context, auctionID int64, name string) error {
	ok, err := r.exists(ctx, auctionID, name)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) exists(ctx context.Context, auctionID int64, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bids WHERE auction_id = $1 AND name = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, auctionID, name).Scan(&ok); err != nil {
		return false, dbError(err)
	}
	return ok, nil
}

func (r *PostgresRepository) List(ctx context.Context, auctionID int64) ([]*models.Bid, error) {
	query := `SELECT auction_id, name, round, amount, time FROM bids WHERE auction_id = $1`

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var result []*models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.AuctionID, &b.Name, &b.Round, &b.Amount, &b.Time); err != nil {
			return nil, dbError(err)
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByAuction(ctx context.Context, auctionID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bids WHERE auction_id = $1`, auctionID)
	if err != nil {
		return 0, dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
