package watch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleState() *api.State {
	return &api.State{
		Auction:      &api.Auction{ID: 7, Token: "tok", Topic: "Roof repair"},
		CurrentRound: 2,
		MaxRound:     2,
		MissingCount: 1,
		BidderCount:  2,
		Sums: []api.RoundSum{
			{Round: 1, Sum: dec("90")},
			{Round: 2, Hidden: true},
		},
		Bidders: []api.Bidder{
			{Name: "alice", Cells: []api.Cell{
				{Round: 1, Kind: rounds.Committed, Value: dec("60")},
				{Round: 2, Kind: rounds.Carried, Value: dec("-60")},
			}},
			{Name: "bob", Cells: []api.Cell{
				{Round: 1, Kind: rounds.Committed, Value: dec("30")},
				{Round: 2, Kind: rounds.Hidden},
			}},
		},
		Status: api.Status{Text: "Round 1: 90.00 of 100.00 (90%)"},
	}
}

func TestTable(t *testing.T) {
	out := Table(sampleState(), 80)

	assert.Contains(t, out, "Roof repair")
	assert.Contains(t, out, "Round 1: 90.00 of 100.00 (90%)")
	assert.Contains(t, out, "Round 2 open, 1 of 2 bidders missing")

	lines := strings.Split(out, "\n")
	var alice, bob, sum []string
	for _, l := range lines {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "alice":
			alice = f
		case "bob":
			bob = f
		case "Sum":
			sum = f
		}
	}
	assert.Equal(t, []string{"alice", "60.00", "(60.00)"}, alice)
	assert.Equal(t, []string{"bob", "30.00", "***"}, bob)
	assert.Equal(t, []string{"Sum", "90.00", "***"}, sum)
}

func TestTable_DropsOldRoundsWhenNarrow(t *testing.T) {
	st := &api.State{
		Auction:      &api.Auction{Token: "tok"},
		CurrentRound: 6,
		MaxRound:     5,
		BidderCount:  1,
		Bidders:      []api.Bidder{{Name: "al"}},
	}
	for r := 1; r <= 5; r++ {
		st.Sums = append(st.Sums, api.RoundSum{Round: r, Sum: dec("1")})
		st.Bidders[0].Cells = append(st.Bidders[0].Cells, api.Cell{Round: r, Kind: rounds.Committed, Value: dec("1")})
	}
	st.RoundComplete = true

	out := Table(st, 18)
	assert.Contains(t, out, "Auction tok")
	assert.Contains(t, out, "Round 5 closed, round 6 opens with the next bid")

	var header []string
	for _, l := range strings.Split(out, "\n") {
		if f := strings.Fields(l); len(f) > 0 && f[0] == "Bidder" {
			header = f
		}
	}
	assert.Equal(t, []string{"Bidder", "R4", "R5"}, header)
}

func TestTable_Empty(t *testing.T) {
	out := Table(&api.State{Auction: &api.Auction{Topic: "x"}, CurrentRound: 1, Status: api.Status{Text: "No round closed yet"}}, 80)
	assert.Contains(t, out, "No bidders yet")
	assert.Contains(t, out, "No round closed yet")
}

func TestRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{out: &buf, width: func() int { return 80 }}
	require.NoError(t, r.Render(sampleState()))
	assert.False(t, strings.HasPrefix(buf.String(), clearScreen))
	assert.Contains(t, buf.String(), "alice")

	buf.Reset()
	r.clear = true
	require.NoError(t, r.Render(sampleState()))
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
}
