package rounds

import (
	"testing"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckClose(t *testing.T) {
	allIn := []*models.Bid{bid("alice", 1, "10"), bid("bob", 1, "20")}
	oneIn := []*models.Bid{bid("alice", 1, "10"), reg("bob")}
	nobody := []*models.Bid{bid("alice", 1, "10"), bid("bob", 1, "20"), bid("alice", 2, "5"), reg("carol")}

	tests := []struct {
		name    string
		mode    models.RoundEndMode
		history []*models.Bid
		wantErr bool
	}{
		{"auto never", models.Auto, oneIn, true},
		{"after last with missing", models.ManualAfterLast, oneIn, true},
		{"after last complete", models.ManualAfterLast, allIn, false},
		{"after first with one", models.ManualAfterFirst, oneIn, false},
		{"after first with all", models.ManualAfterFirst, allIn, false},
		{"after first round two", models.ManualAfterFirst, nobody, false},
		{"no bids", models.ManualAfterFirst, []*models.Bid{reg("alice")}, true},
		{"empty auction", models.ManualAfterLast, nil, true},
		{"unknown mode", models.RoundEndMode(42), allIn, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Calculate(tt.history, Params{Target: dec("100"), Mode: tt.mode, LastRound: models.NoLastRound})
			err := CheckClose(tt.mode, st)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrPreconditionFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckClose_AlreadyClosed(t *testing.T) {
	history := []*models.Bid{bid("alice", 1, "10"), reg("bob")}
	st := Calculate(history, Params{Target: dec("100"), Mode: models.ManualAfterFirst, LastRound: 2})

	assert.ErrorIs(t, CheckClose(models.ManualAfterFirst, st), common.ErrPreconditionFailed)
}

func TestCloseTarget(t *testing.T) {
	st := Calculate([]*models.Bid{bid("alice", 1, "10")}, Params{Target: dec("1"), Mode: models.ManualAfterLast})
	assert.Equal(t, 2, CloseTarget(st))
}

func TestCellKindString(t *testing.T) {
	assert.Equal(t, "carried", Carried.String())
	assert.Equal(t, "unknown", CellKind(9).String())
}

func TestCellKindText(t *testing.T) {
	var k CellKind
	assert.NoError(t, k.UnmarshalText([]byte("hidden")))
	assert.Equal(t, Hidden, k)
	assert.Error(t, k.UnmarshalText([]byte("bogus")))
}
