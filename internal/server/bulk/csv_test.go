package bulk

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := "alice;60;70\nbob;30;;45,5\ncarol\n\n"

	rows, err := Read(strings.NewReader(in), 9, now)
	require.NoError(t, err)

	type key struct {
		name  string
		round int
	}
	got := map[key]string{}
	for _, b := range rows {
		assert.Equal(t, int64(9), b.AuctionID)
		assert.Equal(t, now, b.Time)
		got[key{b.Name, b.Round}] = b.Amount.String()
	}
	assert.Equal(t, map[key]string{
		{"alice", 0}: "0", {"alice", 1}: "60", {"alice", 2}: "70",
		{"bob", 0}: "0", {"bob", 1}: "30", {"bob", 3}: "45.5",
		{"carol", 0}: "0",
	}, got)
}

func TestRead_Rejects(t *testing.T) {
	tests := map[string]string{
		"negative":  "alice;-5\n",
		"malformed": "alice;ten\n",
		"duplicate": "alice;1\nalice;2\n",
		"no name":   ";5\n",
		"quote":     "\"alice;5\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in), 1, time.Now())
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestWrite(t *testing.T) {
	rows := []*models.Bid{
		{Name: "bob", Round: 1, Amount: decimal.RequireFromString("30")},
		{Name: "bob", Round: 3, Amount: decimal.RequireFromString("45.5")},
		{Name: "alice", Round: 0},
		{Name: "alice", Round: 1, Amount: decimal.RequireFromString("60")},
		{Name: "carol", Round: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	assert.Equal(t, "alice;60\nbob;30;;45.5\ncarol\n", buf.String())
}

func TestWriteThenRead(t *testing.T) {
	rows := []*models.Bid{
		{Name: "alice", Round: 0},
		{Name: "alice", Round: 2, Amount: decimal.RequireFromString("12.34")},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	back, err := Read(&buf, 1, time.Now())
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, 2, back[1].Round)
	assert.True(t, back[1].Amount.Equal(decimal.RequireFromString("12.34")))
}
