package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/services"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

func state(v *services.View, err error) (*api.State, error) {
	if err != nil {
		return nil, err
	}
	return api.NewState(v.Auction, v.State), nil
}

func (s *GRPCServer) GetState(ctx context.Context, req *api.StateRequest) (*api.State, error) {
	return state(s.bidders.State(ctx, req.Token, req.Viewer))
}

func (s *GRPCServer) SubmitBid(ctx context.Context, req *api.SubmitBidRequest) (*api.State, error) {
	return state(s.bidders.SubmitBid(ctx, req.Token, req.Name, req.Amount))
}

func (s *GRPCServer) RegisterBidder(ctx context.Context, req *api.RegisterBidderRequest) (*api.State, error) {
	return state(s.bidders.RegisterBidder(ctx, req.Token, req.Name))
}

func (s *GRPCServer) RenameBidder(ctx context.Context, req *api.RenameBidderRequest) (*api.State, error) {
	return state(s.bidders.RenameBidder(ctx, req.Token, req.OldName, req.NewName))
}

func (s *GRPCServer) CloseRound(ctx context.Context, req *api.CloseRoundRequest) (*api.State, error) {
	return state(s.bidders.CloseRound(ctx, req.Token, req.RequestedBy))
}

func (s *GRPCServer) TogglePeek(ctx context.Context, req *api.TogglePeekRequest) (*api.State, error) {
	return state(s.bidders.TogglePeek(ctx, req.Token))
}

func (s *GRPCServer) CreateAuction(ctx context.Context, req *api.AuctionRequest) (*api.Auction, error) {
	p, err := auctionParams(req)
	if err != nil {
		return nil, err
	}
	a, err := s.auctions.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return api.NewAuction(a, true), nil
}

func (s *GRPCServer) UpdateAuction(ctx context.Context, req *api.AuctionRequest) (*api.Auction, error) {
	p, err := auctionParams(req)
	if err != nil {
		return nil, err
	}
	a, err := s.auctions.Update(ctx, req.ConfigToken, p)
	if err != nil {
		return nil, err
	}
	return api.NewAuction(a, true), nil
}

func (s *GRPCServer) DeleteAuction(ctx context.Context, req *api.DeleteAuctionRequest) (*api.Empty, error) {
	if err := s.auctions.Delete(ctx, req.ConfigToken); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ExportBids(ctx context.Context, req *api.ExportBidsRequest) (*api.CSV, error) {
	csv, err := s.bulk.Export(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return &api.CSV{CSV: csv}, nil
}

func (s *GRPCServer) ImportBids(ctx context.Context, req *api.ImportBidsRequest) (*api.State, error) {
	return state(s.bulk.Import(ctx, req.ConfigToken, req.CSV))
}

// Watch streams a nudge for every change of the auction until the client
// goes away or the auction is deleted.
func (s *GRPCServer) Watch(req *api.WatchRequest, stream grpc.ServerStreamingServer[api.WatchMessage]) error {
	ctx := stream.Context()

	a, err := s.bidders.Lookup(ctx, req.Token)
	if err != nil {
		return err
	}

	sub := s.hub.Subscribe(a.ID)
	defer sub.Close()
	s.logger.Debug(ctx, "watch started", "auction", a.ID, "session", sub.ID.String())

	// Changes made before this point are not nudged; the client reloads on
	// this first message instead.
	hello := api.Nudge{AuctionID: a.ID, Hint: notify.Subscribed}
	if err := stream.Send(&api.WatchMessage{Message: hello.Encode()}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := stream.Send(&api.WatchMessage{Message: m.Encode()}); err != nil {
				return err
			}
		}
	}
}

func auctionParams(req *api.AuctionRequest) (services.AuctionParams, error) {
	p := services.AuctionParams{
		Topic:       req.Topic,
		Description: req.Description,
		Target:      decimal.Zero,
	}

	if strings.TrimSpace(req.Target) != "" {
		target, err := models.ParseAmount(req.Target)
		if err != nil {
			return p, err
		}
		p.Target = target
	}

	mode, err := models.ParseRoundEndMode(req.RoundEndMode)
	if err != nil {
		return p, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	p.Mode = mode

	if exp := strings.TrimSpace(req.Expiration); exp != "" {
		t, err := parseExpiration(exp)
		if err != nil {
			return p, err
		}
		p.Expiration = t
	}
	return p, nil
}

func parseExpiration(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: expiration %q is neither a date nor an RFC 3339 time", common.ErrorValidation, s)
}
