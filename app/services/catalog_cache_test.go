package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// memoryCache is an in-process orm.Cacher that records every Forget.
type memoryCache struct {
	mu        sync.Mutex
	entries   map[string][]byte
	forgotten []string
}

func installMemoryCache(t *testing.T) *memoryCache {
	t.Helper()
	c := &memoryCache{entries: map[string][]byte{}}
	orm.CacheStore = c
	t.Cleanup(func() { orm.CacheStore = nil })
	return c
}

func (c *memoryCache) Get(key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	return ok && json.Unmarshal(data, dest) == nil
}

func (c *memoryCache) Set(key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Forget(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.forgotten = append(c.forgotten, k)
	}
	return nil
}

func (c *memoryCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgotten = nil
}

func (c *memoryCache) forgets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.forgotten...)
}

func TestCatalogCacheIsDroppedOnlyAfterPlacementCommits(t *testing.T) {
	cache := installMemoryCache(t)
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@example.com")
	cat := f.category(t, "Mugs")
	plenty := f.product(t, cat, "PLENTY", "5.00", 5, true)
	scarce := f.product(t, cat, "SCARCE", "9.00", 1, true)
	svc := f.orderService(nil, nil)

	warm, err := f.products.Active(ctx)
	require.NoError(t, err)
	require.Len(t, warm, 2)
	cache.reset()

	_, err = svc.PlaceOrder(ctx, cart(line(plenty.ID, 2), line(scarce.ID, 3)), u.ID)
	require.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.Empty(t, cache.forgets(), "rolled back placement must not touch the cache")

	_, err = svc.PlaceOrder(ctx, cart(line(plenty.ID, 2)), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{repositories.CatalogCacheKey}, cache.forgets())

	listed, err := f.products.Active(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, plenty.ID, listed[0].ID)
	assert.Equal(t, 3, listed[0].StockQuantity)
}
