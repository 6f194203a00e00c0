// Package repomanager provides the RepositoryManager implementations: one for
// PostgreSQL, wiring repository constructors and goose migrations, and one
// for the in-memory store.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/crowdbid/internal/dbx"
	"github.com/dmitrijs2005/crowdbid/internal/server/migrations"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/auctions"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/bids"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Auction
// lookups by token go through a shared LRU cache.
type PostgresRepositoryManager struct {
	db       *sql.DB
	auctions *auctions.CachedRepository
}

// NewPostgresRepositoryManager wraps an open *sql.DB. cacheSize bounds the
// token cache.
func NewPostgresRepositoryManager(db *sql.DB, cacheSize int) (*PostgresRepositoryManager, error) {
	cached, err := auctions.NewCachedRepository(auctions.NewPostgresRepository(db), cacheSize)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}
	return &PostgresRepositoryManager{db: db, auctions: cached}, nil
}

// OpenPostgres opens a pgx-backed pool for dsn and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string, cacheSize int) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	m, err := NewPostgresRepositoryManager(db, cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *PostgresRepositoryManager) Auctions() auctions.Repository {
	return m.auctions
}

func (m *PostgresRepositoryManager) Bids() bids.Repository {
	return bids.NewPostgresRepository(m.db)
}

type pgTx struct {
	auctions auctions.Repository
	bids     bids.Repository
}

func (t pgTx) Auctions() auctions.Repository { return t.auctions }
func (t pgTx) Bids() bids.Repository         { return t.bids }

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, pgTx{
			auctions: m.auctions.Bind(auctions.NewPostgresRepository(tx)),
			bids:     bids.NewPostgresRepository(tx),
		})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the manager's database.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

var _ RepositoryManager = (*PostgresRepositoryManager)(nil)
