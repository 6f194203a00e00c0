package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

var (
	ErrAuctionGone = errors.New("auction no longer exists")
	ErrNoToken     = errors.New("auction token is required")
)

// Client is the part of api.AuctionsClient the watcher needs.
type Client interface {
	GetState(ctx context.Context, in *api.StateRequest, opts ...grpc.CallOption) (*api.State, error)
	Watch(ctx context.Context, in *api.WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[api.WatchMessage], error)
}

// Display shows one state snapshot.
type Display interface {
	Render(st *api.State) error
}

type Watcher struct {
	client  Client
	display Display
	token   string
	viewer  string
	delay   time.Duration
	logger  logging.Logger
}

func NewWatcher(c Client, d Display, cfg *Config, l logging.Logger) *Watcher {
	return &Watcher{
		client:  c,
		display: d,
		token:   cfg.Token,
		viewer:  cfg.Viewer,
		delay:   cfg.ReconnectDelay,
		logger:  l.With("module", "watch"),
	}
}

// Dial opens an insecure client connection to addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// Run watches until ctx is cancelled or the auction disappears.
func (w *Watcher) Run(ctx context.Context) error {
	if w.token == "" {
		return ErrNoToken
	}

	err := retry.Do(ctx, retry.NewConstant(w.delay), func(ctx context.Context) error {
		err := w.session(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrAuctionGone), ctx.Err() != nil:
			return err
		}
		w.logger.Warn(ctx, "connection lost, reconnecting", "error", err, "delay", w.delay)
		return retry.RetryableError(err)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// session runs one connection. The server greets a session once it is on
// the auction's topic; the state is fetched on that greeting and again on
// every later nudge, so no change is missed between the two.
func (w *Watcher) session(ctx context.Context) error {
	stream, err := w.client.Watch(ctx, &api.WatchRequest{Token: w.token})
	if err != nil {
		return classify(err)
	}

	var auctionID int64
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			// The server ends the stream when the auction is deleted; the
			// next fetch tells that apart from a restart.
			if _, err := w.refresh(ctx); err != nil {
				return err
			}
			return errors.New("stream closed by server")
		}
		if err != nil {
			return classify(err)
		}

		m, err := api.DecodeNudge(msg.Message)
		if err != nil {
			w.logger.Warn(ctx, "bad message", "error", err)
			continue
		}
		if auctionID != 0 && !m.For(auctionID) {
			continue
		}
		w.logger.Debug(ctx, "nudge", "hint", m.Hint)

		st, err := w.refresh(ctx)
		if err != nil {
			return err
		}
		auctionID = st.Auction.ID
	}
}

func (w *Watcher) refresh(ctx context.Context) (*api.State, error) {
	st, err := w.client.GetState(ctx, &api.StateRequest{Token: w.token, Viewer: w.viewer})
	if err != nil {
		return nil, classify(err)
	}
	if err := w.display.Render(st); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return st, nil
}

func classify(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrAuctionGone
	}
	return err
}
