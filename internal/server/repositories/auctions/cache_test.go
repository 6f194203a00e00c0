package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	byID     map[int64]*models.Auction
	tokenHit int
	idHit    int
}

func (r *countingRepo) Create(context.Context, *models.Auction) (*models.Auction, error) {
	return nil, nil
}
func (r *countingRepo) GetByID(_ context.Context, id int64) (*models.Auction, error) {
	r.idHit++
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}
func (r *countingRepo) LockByID(ctx context.Context, id int64) (*models.Auction, error) {
	return r.GetByID(ctx, id)
}
func (r *countingRepo) GetByToken(_ context.Context, token string) (*models.Auction, error) {
	r.tokenHit++
	for _, a := range r.byID {
		if a.Token == token {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}
func (r *countingRepo) GetByConfigToken(_ context.Context, token string) (*models.Auction, error) {
	r.tokenHit++
	for _, a := range r.byID {
		if a.ConfigToken == token {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}
func (r *countingRepo) Update(context.Context, *models.Auction) error { return nil }
func (r *countingRepo) TogglePeek(context.Context, int64, time.Time) (bool, error) {
	return false, nil
}
func (r *countingRepo) AdvanceLastRound(context.Context, int64, int, time.Time) error { return nil }
func (r *countingRepo) ListExpired(context.Context, time.Time) ([]*models.Auction, error) {
	return nil, nil
}
func (r *countingRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func TestCachedRepository_ResolvesTokenOnce(t *testing.T) {
	inner := &countingRepo{byID: map[int64]*models.Auction{1: {ID: 1, Token: "t1", ConfigToken: "c1"}}}
	c, err := NewCachedRepository(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		a, err := c.GetByToken(context.Background(), "t1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.ID)
	}
	assert.Equal(t, 1, inner.tokenHit, "token query only on the first miss")
	assert.Equal(t, 2, inner.idHit)

	_, err = c.GetByConfigToken(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCachedRepository_DeleteEvicts(t *testing.T) {
	inner := &countingRepo{byID: map[int64]*models.Auction{1: {ID: 1, Token: "t1", ConfigToken: "c1"}}}
	c, err := NewCachedRepository(inner, 8)
	require.NoError(t, err)

	_, err = c.GetByToken(context.Background(), "t1")
	require.NoError(t, err)
	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, 0, c.Len())

	_, err = c.GetByToken(context.Background(), "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCachedRepository_StaleEntryFallsBack(t *testing.T) {
	inner := &countingRepo{byID: map[int64]*models.Auction{1: {ID: 1, Token: "t1"}}}
	c, err := NewCachedRepository(inner, 8)
	require.NoError(t, err)

	_, err = c.GetByToken(context.Background(), "t1")
	require.NoError(t, err)

	// Deleted behind the cache's back, e.g. by another replica.
	delete(inner.byID, 1)

	_, err = c.GetByToken(context.Background(), "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestNewCachedRepository_InvalidSize(t *testing.T) {
	_, err := NewCachedRepository(&countingRepo{}, 0)
	assert.Error(t, err)
}
