package repomanager

import (
	"context"

	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/auctions"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/bids"
)

// Repositories is a set of repositories bound to one connection or
// transaction.
type Repositories interface {
	Auctions() auctions.Repository
	Bids() bids.Repository
}

// RepositoryManager vends repositories for one storage backend and runs units
// of work atomically across them.
type RepositoryManager interface {
	Repositories
	RunMigrations(ctx context.Context) error
	// WithTx commits the writes fn makes through tx if fn returns nil, and
	// discards all of them otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Close() error
}
