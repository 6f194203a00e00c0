// Package models defines the records the CrowdBid server persists.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RoundEndMode decides how a bidding round is closed.
type RoundEndMode int

const (
	// Auto closes a round the moment every bidder has committed a bid.
	Auto RoundEndMode = iota
	// ManualAfterLast allows a manual close once every bidder has bid.
	ManualAfterLast
	// ManualAfterFirst allows a manual close once anyone has bid.
	ManualAfterFirst
)

var roundEndModeNames = [...]string{
	Auto:             "auto",
	ManualAfterLast:  "manual_after_last",
	ManualAfterFirst: "manual_after_first",
}

func (m RoundEndMode) String() string {
	if m.Valid() {
		return roundEndModeNames[m]
	}
	return fmt.Sprintf("RoundEndMode(%d)", int(m))
}

func (m RoundEndMode) Valid() bool {
	return m >= Auto && m <= ManualAfterFirst
}

// ParseRoundEndMode accepts the stored names. An empty string means Auto.
func ParseRoundEndMode(s string) (RoundEndMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto, nil
	}
	for i, name := range roundEndModeNames {
		if name == s {
			return RoundEndMode(i), nil
		}
	}
	return Auto, fmt.Errorf("unknown round end mode %q", s)
}

func (m RoundEndMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid round end mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *RoundEndMode) UnmarshalText(b []byte) error {
	parsed, err := ParseRoundEndMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// NoLastRound is stored in Auction.LastRound while no round was closed manually.
const NoLastRound = -1

// Auction is one collective bidding process.
//
// Token grants bidding access, ConfigToken grants administration. LastRound is
// the manual-close override: the minimum round the auction is forced to.
type Auction struct {
	ID           int64
	Token        string
	ConfigToken  string
	Topic        string
	Description  string
	TargetAmount decimal.Decimal
	Expiration   time.Time
	RoundEndMode RoundEndMode
	Peek         bool
	LastRound    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Override returns the manual-close override, if one was recorded.
func (a *Auction) Override() (int, bool) {
	if a.LastRound <= 0 {
		return 0, false
	}
	return a.LastRound, true
}

// Expired reports whether the auction should be purged at now.
func (a *Auction) Expired(now time.Time) bool {
	return !a.Expiration.IsZero() && a.Expiration.Before(now)
}
