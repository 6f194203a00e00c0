package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionService_Create(t *testing.T) {
	f := newFixture(t)

	a, err := f.auctions.Create(context.Background(), AuctionParams{
		Topic:  "  Garden fence ",
		Target: decimal.RequireFromString("250.50"),
		Mode:   models.ManualAfterLast,
	})
	require.NoError(t, err)

	assert.Len(t, a.Token, 2*common.TokenBytes)
	assert.Len(t, a.ConfigToken, 2*common.TokenBytes)
	assert.NotEqual(t, a.Token, a.ConfigToken)
	assert.Equal(t, "Garden fence", a.Topic)
	assert.Equal(t, testNow.Add(90*24*time.Hour), a.Expiration)
	assert.Equal(t, models.NoLastRound, a.LastRound)
	assert.False(t, a.Peek)
}

func TestAuctionService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	tests := map[string]AuctionParams{
		"empty topic":     {Topic: " "},
		"negative target": {Topic: "x", Target: decimal.NewFromInt(-1)},
		"bad mode":        {Topic: "x", Mode: models.RoundEndMode(9)},
		"past expiration": {Topic: "x", Expiration: testNow.Add(-time.Hour)},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.auctions.Create(context.Background(), p)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestAuctionService_Update(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100")
	exp := a.Expiration

	got, err := f.auctions.Update(context.Background(), a.ConfigToken, AuctionParams{
		Topic:       "New topic",
		Description: "details",
		Target:      decimal.NewFromInt(300),
		Mode:        models.ManualAfterFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "New topic", got.Topic)
	assert.Equal(t, exp, got.Expiration)
	assert.Equal(t, []string{notify.AuctionUpdated}, f.bus.hints())

	// The bidding token does not grant administration.
	_, err = f.auctions.Update(context.Background(), a.Token, AuctionParams{Topic: "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAuctionService_Delete(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100", "alice")
	f.bid(t, a, "alice", "5")
	ctx := context.Background()

	require.NoError(t, f.auctions.Delete(ctx, a.ConfigToken))

	_, err := f.repos.Auctions().GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	rows, err := f.repos.Bids().List(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, f.bus.hints(), notify.AuctionDeleted)
	assert.Equal(t, []int64{a.ID}, f.bus.closedAuctions())

	assert.ErrorIs(t, f.auctions.Delete(ctx, a.ConfigToken), common.ErrorNotFound)
}

func TestAuctionService_UpdateKeepsAutoClosedRound(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100", "alice", "bob")
	ctx := context.Background()
	f.bid(t, a, "alice", "60")
	f.bid(t, a, "bob", "30")

	_, err := f.auctions.Update(ctx, a.ConfigToken, AuctionParams{
		Topic: a.Topic, Target: a.TargetAmount, Mode: models.ManualAfterLast,
	})
	require.NoError(t, err)

	v, err := f.bidders.State(ctx, a.Token, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, v.State.CurrentRound)
	assert.Equal(t, "Round 1: 90.00 of 100.00 (90%)", v.State.Status.Text)
}

func TestAuctionService_UpdateToAutoClosesFinishedRound(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.ManualAfterLast, "100", "alice", "bob")
	ctx := context.Background()
	f.bid(t, a, "alice", "60")
	v := f.bid(t, a, "bob", "30")
	require.Equal(t, 1, v.State.CurrentRound)

	got, err := f.auctions.Update(ctx, a.ConfigToken, AuctionParams{
		Topic: a.Topic, Target: a.TargetAmount, Mode: models.Auto,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got.LastRound)

	_, err = f.bidders.RegisterBidder(ctx, a.Token, "carol")
	require.NoError(t, err)
	v, err = f.bidders.State(ctx, a.Token, "carol")
	require.NoError(t, err)
	assert.Equal(t, 2, v.State.CurrentRound)
}
