// Package server wires the CrowdBid server together: storage, the
// notification hub, the services and both transports, and runs them until
// the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/archive"
	"github.com/dmitrijs2005/crowdbid/internal/server/config"
	"github.com/dmitrijs2005/crowdbid/internal/server/httpapi"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crowdbid/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/crowdbid/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	hub         *notify.Hub
	bidders     *services.BidderService
	auctions    *services.AuctionService
	bulk        *services.BulkService
	maintenance *services.MaintenanceService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	// A nil *S3Archiver must not end up inside the interface.
	var archiver archive.Archiver
	s3a, err := archive.NewS3Archiver(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	if s3a != nil {
		archiver = s3a
	}

	hub := notify.NewHub(c.SubscriberBuffer, logger)

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		hub:         hub,
		bidders:     services.NewBidderService(repos, hub, logger),
		auctions:    services.NewAuctionService(repos, hub, logger, c.AuctionLifetime),
		bulk:        services.NewBulkService(repos, hub, logger),
		maintenance: services.NewMaintenanceService(repos, hub, archiver, logger),
	}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.UsesMemoryStore() {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	m, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN, c.TokenCacheSize)
	if err != nil {
		return nil, err
	}
	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return m, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves gRPC and HTTP and runs the maintenance loop until ctx is done,
// a signal arrives, or one of them fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "memory_store", app.config.UsesMemoryStore())
	app.initSignalHandler(cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.bidders, app.auctions, app.bulk, app.hub)
	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.bidders, app.bulk, app.maintenance, app.hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error {
		app.maintenance.Run(gctx, app.config.MaintenanceInterval)
		return nil
	})

	err := g.Wait()
	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "closing storage", "error", cerr)
	}
	if err != nil {
		app.logger.Error(ctx, "app stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
