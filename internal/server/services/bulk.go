package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/bulk"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/bids"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
)

// BulkService moves an auction's bids in and out as CSV.
type BulkService struct {
	repomanager repomanager.RepositoryManager
	bus         notify.Publisher
	logger      logging.Logger
	now         func() time.Time
}

func NewBulkService(m repomanager.RepositoryManager, bus notify.Publisher, logger logging.Logger) *BulkService {
	return &BulkService{
		repomanager: m,
		bus:         bus,
		logger:      logger.With("module", "bulk"),
		now:         time.Now,
	}
}

// Export renders the bids of the auction behind token. While peek is off
// the open round is left out, as nobody holding the bidding token may see
// what the others bid in it yet.
func (s *BulkService) Export(ctx context.Context, token string) (string, error) {
	a, err := s.repomanager.Auctions().GetByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("auction lookup: %w", err)
	}
	rows, err := s.repomanager.Bids().List(ctx, a.ID)
	if err != nil {
		return "", fmt.Errorf("list bids: %w", err)
	}
	if !a.Peek {
		rows = withoutOpenRound(rows, rounds.Calculate(rows, rounds.ParamsOf(a)))
	}
	return writeCSV(rows)
}

func withoutOpenRound(rows []*models.Bid, st *rounds.State) []*models.Bid {
	open, ok := st.OpenRound()
	if !ok {
		return rows
	}
	kept := make([]*models.Bid, 0, len(rows))
	for _, b := range rows {
		if b.Round != open {
			kept = append(kept, b)
		}
	}
	return kept
}

// exportCSV renders every bid of the auction, open round included.
func exportCSV(ctx context.Context, repos repomanager.Repositories, auctionID int64) (string, error) {
	rows, err := repos.Bids().List(ctx, auctionID)
	if err != nil {
		return "", fmt.Errorf("list bids: %w", err)
	}
	return writeCSV(rows)
}

func writeCSV(rows []*models.Bid) (string, error) {
	var buf bytes.Buffer
	if err := bulk.Write(&buf, rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return buf.String(), nil
}

// Import replaces all bids of the auction behind configToken with the CSV
// contents. Nothing changes if any line is rejected.
func (s *BulkService) Import(ctx context.Context, configToken, csv string) (*View, error) {
	a, err := s.repomanager.Auctions().GetByConfigToken(ctx, configToken)
	if err != nil {
		return nil, fmt.Errorf("auction lookup: %w", err)
	}

	rows, err := bulk.Read(strings.NewReader(csv), a.ID, s.now())
	if err != nil {
		return nil, err
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.Repositories) error {
		locked, err := tx.Auctions().LockByID(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("auction lookup: %w", err)
		}
		if err := bids.ReplaceAll(ctx, tx.Bids(), a.ID, rows); err != nil {
			return err
		}
		v, err := loadView(ctx, tx, locked)
		if err != nil {
			return err
		}
		return settleAuto(ctx, tx, v, s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("import bids: %w", err)
	}
	s.logger.Info(ctx, "bids imported", "auction", a.ID, "rows", len(rows))
	s.bus.Publish(ctx, a.ID, notify.BidsImported)

	a, err = s.repomanager.Auctions().GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("auction lookup: %w", err)
	}
	return loadView(ctx, s.repomanager, a)
}
