package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/archive"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
)

// MaintenanceService purges expired auctions.
type MaintenanceService struct {
	repomanager repomanager.RepositoryManager
	bus         notify.Publisher
	archiver    archive.Archiver
	logger      logging.Logger
	now         func() time.Time
}

// NewMaintenanceService builds the service. archiver may be nil, in which
// case expired auctions are deleted without a copy.
func NewMaintenanceService(m repomanager.RepositoryManager, bus notify.Publisher, archiver archive.Archiver, logger logging.Logger) *MaintenanceService {
	return &MaintenanceService{
		repomanager: m,
		bus:         bus,
		archiver:    archiver,
		logger:      logger.With("module", "maintenance"),
		now:         time.Now,
	}
}

// Cleanup deletes every auction whose expiration has passed, each with its
// bids in its own transaction, and returns how many were deleted. An auction
// that cannot be archived is kept for the next run.
func (s *MaintenanceService) Cleanup(ctx context.Context) (int, error) {
	expired, err := s.repomanager.Auctions().ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}

	var (
		cleaned int
		errs    []error
	)
	for _, a := range expired {
		if s.archiver != nil {
			csv, err := exportCSV(ctx, s.repomanager, a.ID)
			if err == nil {
				var key string
				key, err = s.archiver.Archive(ctx, a, []byte(csv))
				if err == nil {
					s.logger.Debug(ctx, "auction archived", "auction", a.ID, "key", key)
				}
			}
			if err != nil {
				s.logger.Error(ctx, "archive failed, auction kept", "auction", a.ID, "error", err)
				errs = append(errs, err)
				continue
			}
		}

		n, err := deleteAuction(ctx, s.repomanager, a.ID)
		if err != nil {
			s.logger.Error(ctx, "expired auction not deleted", "auction", a.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		s.logger.Info(ctx, "expired auction deleted", "auction", a.ID, "bids", n)
		s.bus.Publish(ctx, a.ID, notify.AuctionDeleted)
		s.bus.CloseAuction(a.ID)
		cleaned++
	}
	return cleaned, errors.Join(errs...)
}

// Run calls Cleanup every interval until ctx is done. A non-positive
// interval disables the loop.
func (s *MaintenanceService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Info(ctx, "maintenance loop disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Cleanup(ctx)
			if err != nil {
				s.logger.Error(ctx, "maintenance run failed", "error", err)
			}
			if n > 0 {
				s.logger.Info(ctx, "maintenance run finished", "cleaned_auctions", n)
			}
		}
	}
}
