// Package auctions provides the PostgreSQL-backed auction store and a
// token lookup cache in front of it.
package auctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/dbx"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, token, config_token, topic, description, target_amount, expiration,
		round_end_mode, peek, last_round, created_at, updated_at FROM auctions`

func dbError(err error) error {
	return fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*models.Auction, error) {
	var (
		a    models.Auction
		mode string
	)
	err := row.Scan(&a.ID, &a.Token, &a.ConfigToken, &a.Topic, &a.Description, &a.TargetAmount,
		&a.Expiration, &mode, &a.Peek, &a.LastRound, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbError(err)
	}
	if a.RoundEndMode, err = models.ParseRoundEndMode(mode); err != nil {
		return nil, dbError(err)
	}
	return &a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Auction) (*models.Auction, error) {
	query := `
		INSERT INTO auctions (token, config_token, topic, description, target_amount, expiration,
			round_end_mode, peek, last_round, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		a.Token, a.ConfigToken, a.Topic, a.Description, a.TargetAmount, a.Expiration,
		a.RoundEndMode.String(), a.Peek, a.LastRound, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		return nil, dbError(err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	return scanAuction(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
}

func (r *PostgresRepository) LockByID(ctx context.Context, id int64) (*models.Auction, error) {
	return scanAuction(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Auction, error) {
	return scanAuction(r.db.QueryRowContext(ctx, selectColumns+` WHERE token = $1`, token))
}

func (r *PostgresRepository) GetByConfigToken(ctx context.Context, configToken string) (*models.Auction, error) {
	return scanAuction(r.db.QueryRowContext(ctx, selectColumns+` WHERE config_token = $1`, configToken))
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Auction) error {
	query := `
		UPDATE auctions
		SET topic = $2, description = $3, target_amount = $4, expiration = $5,
			round_end_mode = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.Topic, a.Description, a.TargetAmount, a.Expiration, a.RoundEndMode.String(), a.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return expectOne(res, common.ErrorNotFound)
}

func (r *PostgresRepository) TogglePeek(ctx context.Context, id int64, now time.Time) (bool, error) {
	query := `UPDATE auctions SET peek = NOT peek, updated_at = $2 WHERE id = $1 RETURNING peek`

	var peek bool
	if err := r.db.QueryRowContext(ctx, query, id, now).Scan(&peek); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, dbError(err)
	}
	return peek, nil
}

// AdvanceLastRound is the compare-and-set that serializes round closes.
func (r *PostgresRepository) AdvanceLastRound(ctx context.Context, id int64, round int, now time.Time) error {
	query := `UPDATE auctions SET last_round = $2, updated_at = $3 WHERE id = $1 AND last_round < $2`

	res, err := r.db.ExecContext(ctx, query, id, round, now)
	if err != nil {
		return dbError(err)
	}
	return expectOne(res, common.ErrPreconditionFailed)
}

func (r *PostgresRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.Auction, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE expiration < $1 ORDER BY id`, now)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var result []*models.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return dbError(err)
	}
	return expectOne(res, common.ErrorNotFound)
}

func expectOne(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return none
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
