// Package grpc serves the CrowdBid command API and the live-update stream
// over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	bidders  *services.BidderService
	auctions *services.AuctionService
	bulk     *services.BulkService
	hub      *notify.Hub
	logger   logging.Logger
}

var _ api.AuctionsServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, bs *services.BidderService, as *services.AuctionService,
	bulk *services.BulkService, hub *notify.Hub) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		bidders:  bs,
		auctions: as,
		bulk:     bulk,
		hub:      hub,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.errorInterceptor),
		grpc.ChainStreamInterceptor(s.streamErrorInterceptor),
	)
	api.RegisterAuctionsServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// Watch streams only end with their context, so GracefulStop alone
		// would wait for every viewer to disconnect.
		srv.Stop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
