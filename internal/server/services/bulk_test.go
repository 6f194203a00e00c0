package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkService_ExportImport(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100", "alice", "bob", "carol")
	ctx := context.Background()
	f.bid(t, a, "alice", "60")
	f.bid(t, a, "bob", "30")
	require.NoError(t, f.togglePeek(t, a))

	csv, err := f.bulk.Export(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice;60\nbob;30\ncarol\n", csv)

	v, err := f.bulk.Import(ctx, a.ConfigToken, "dave;10;20\nerin;5\n")
	require.NoError(t, err)
	require.Len(t, v.State.Bidders, 2)
	assert.Equal(t, 2, v.State.MaxRound)
	assert.True(t, v.State.Sums[2].Equal(decimal.NewFromInt(25)))
	assert.Contains(t, f.bus.hints(), notify.BidsImported)
}

func TestBulkService_ExportHidesOpenRoundWithoutPeek(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100", "alice", "bob")
	ctx := context.Background()
	f.bid(t, a, "alice", "60")
	f.bid(t, a, "bob", "30")
	f.bid(t, a, "alice", "70")

	csv, err := f.bulk.Export(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice;60\nbob;30\n", csv)

	require.NoError(t, f.togglePeek(t, a))
	csv, err = f.bulk.Export(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice;60;70\nbob;30\n", csv)
}

func TestBulkService_ImportSettlesCompletedAutoRound(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100")
	ctx := context.Background()

	v, err := f.bulk.Import(ctx, a.ConfigToken, "dave;10\nerin;5\n")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Auction.LastRound)

	_, err = f.bidders.RegisterBidder(ctx, a.Token, "frank")
	require.NoError(t, err)
	v = f.bid(t, a, "frank", "1")
	assert.True(t, v.State.Sums[1].Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2, v.State.MaxRound)
}

func TestBulkService_ImportRejectsAndKeepsBids(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, models.Auto, "100", "alice")
	ctx := context.Background()

	_, err := f.bulk.Import(ctx, a.ConfigToken, "dave;10\nerin;-5\n")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.bulk.Import(ctx, a.Token, "dave;10\n")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	csv, err := f.bulk.Export(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice\n", csv)
}
