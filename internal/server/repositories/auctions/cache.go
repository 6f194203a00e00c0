package auctions

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	lru "github.com/hashicorp/golang-lru"
)

// CachedRepository remembers which auction id a token belongs to. Tokens
// never change, so only the mapping is cached; the record itself is always
// read fresh because last_round and peek move.
type CachedRepository struct {
	Repository
	ids *lru.Cache
}

type tokenKey struct {
	config bool
	token  string
}

func NewCachedRepository(r Repository, size int) (*CachedRepository, error) {
	ids, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedRepository{Repository: r, ids: ids}, nil
}

func (c *CachedRepository) GetByToken(ctx context.Context, token string) (*models.Auction, error) {
	return c.lookup(ctx, tokenKey{token: token}, c.Repository.GetByToken)
}

func (c *CachedRepository) GetByConfigToken(ctx context.Context, configToken string) (*models.Auction, error) {
	return c.lookup(ctx, tokenKey{config: true, token: configToken}, c.Repository.GetByConfigToken)
}

func (c *CachedRepository) lookup(ctx context.Context, key tokenKey, miss func(context.Context, string) (*models.Auction, error)) (*models.Auction, error) {
	if v, ok := c.ids.Get(key); ok {
		a, err := c.Repository.GetByID(ctx, v.(int64))
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		c.ids.Remove(key)
	}

	a, err := miss(ctx, key.token)
	if err != nil {
		return nil, err
	}
	c.ids.Add(key, a.ID)
	return a, nil
}

func (c *CachedRepository) Delete(ctx context.Context, id int64) error {
	a, err := c.Repository.GetByID(ctx, id)
	if err == nil {
		c.ids.Remove(tokenKey{token: a.Token})
		c.ids.Remove(tokenKey{config: true, token: a.ConfigToken})
	}
	return c.Repository.Delete(ctx, id)
}

// Len is the number of cached token mappings.
func (c *CachedRepository) Len() int {
	return c.ids.Len()
}

var _ Repository = (*CachedRepository)(nil)

// Bind returns a repository over r that shares this cache, typically one
// bound to a transaction.
func (c *CachedRepository) Bind(r Repository) *CachedRepository {
	return &CachedRepository{Repository: r, ids: c.ids}
}
