// Package watch is the client side of CrowdBid live updates.
//
// # Overview
//
// A Watcher keeps one auction's round table on screen:
//  1. it opens the gRPC Watch stream for the auction token,
//  2. fetches the full state right after (re)connecting,
//  3. re-fetches and re-renders on every nudge received.
//
// Nudges carry no data. The state is always re-derived from the server, so
// a dropped or duplicated nudge costs at most one extra fetch.
//
// # Reconnects
//
// A broken stream is retried with a constant delay (two seconds by default)
// until the context is cancelled. An auction that no longer exists ends the
// watch with ErrAuctionGone.
//
// # Configuration
//
// Defaults, then an optional JSON or TOML file (-c/-config), then flags:
//
//	-a string   address:port of the gRPC endpoint
//	-t string   auction token
//	-v string   viewer name (unlocks the viewer's own open-round bid)
//	-r int      reconnect delay (seconds)
package watch
