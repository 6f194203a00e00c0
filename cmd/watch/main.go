// Command watch shows one auction's round table and keeps it current.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/client/watch"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
)

func main() {
	cfg, err := watch.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := watch.Dial(cfg.ServerEndpointAddr)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The table owns stdout; logs go to stderr.
	logger := logging.NewJSONLogger(os.Stderr, "warn")
	w := watch.NewWatcher(api.NewAuctionsClient(conn), watch.NewRenderer(os.Stdout), cfg, logger)

	err = w.Run(ctx)
	switch {
	case errors.Is(err, watch.ErrAuctionGone):
		fmt.Fprintln(os.Stderr, "The auction was deleted.")
	case err != nil:
		log.Printf("%v", err)
		os.Exit(1)
	}
}
