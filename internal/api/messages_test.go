package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	a := &models.Auction{ID: 3, Token: "t", ConfigToken: "secret", Topic: "Roof",
		TargetAmount: decimal.NewFromInt(100), Expiration: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	bids := []*models.Bid{
		{Name: "alice", Round: 1, Amount: decimal.NewFromInt(60)},
		{Name: "bob", Round: 1, Amount: decimal.NewFromInt(30)},
		{Name: "bob", Round: 2, Amount: decimal.NewFromInt(40)},
	}
	st := rounds.Calculate(bids, rounds.Params{Target: a.TargetAmount, Mode: models.Auto})

	out := NewState(a, st.Redact("bob"))
	assert.Empty(t, out.Auction.ConfigToken)
	require.Len(t, out.Sums, 2)
	require.NotNil(t, out.Sums[0].Sum)
	assert.Equal(t, "90", out.Sums[0].Sum.String())
	assert.True(t, out.Sums[1].Hidden)
	assert.Nil(t, out.Sums[1].Sum)

	alice := out.Bidders[0]
	assert.Equal(t, rounds.Hidden, alice.Cells[1].Kind)
	assert.Nil(t, alice.Cells[1].Value)

	out = NewState(a, st)
	require.NotNil(t, out.Bidders[0].Cells[1].Value)
	assert.Equal(t, "-60", out.Bidders[0].Cells[1].Value.String())
}

func TestCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&AuctionRequest{Topic: "Roof", Target: "10", RoundEndMode: "auto"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"Roof","target":"10","round_end_mode":"auto"}`, string(b))

	in := &State{
		Auction: &Auction{ID: 1, RoundEndMode: models.ManualAfterFirst, Target: decimal.NewFromInt(5)},
		Bidders: []Bidder{{Name: "a", Cells: []Cell{{Round: 1, Kind: rounds.Carried}}}},
	}
	b, err = json.Marshal(in)
	require.NoError(t, err)

	var back State
	require.NoError(t, c.Unmarshal(b, &back))
	assert.Equal(t, models.ManualAfterFirst, back.Auction.RoundEndMode)
	assert.Equal(t, rounds.Carried, back.Bidders[0].Cells[0].Kind)
}
