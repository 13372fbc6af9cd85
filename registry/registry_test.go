package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/always-cache/bazaar/cache"
	contenttype "github.com/always-cache/bazaar/pkg/content-type"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
	snapshot "github.com/always-cache/bazaar/pkg/response-snapshot"
)

func newTestCaches(t *testing.T) *Caches {
	t.Helper()
	logger := zerolog.Nop()
	c, err := New(Config{DefaultCapacity: 10, Logger: &logger})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func fill[K comparable](t *testing.T, p Pair[K], key K) {
	t.Helper()
	for _, ct := range []contenttype.ContentType{contenttype.JSON, contenttype.Bincode} {
		p.Pick(ct).GetResponse(context.Background(), key, func(context.Context) (snapshot.Reply, error) {
			return snapshot.OK(map[string]any{"key": key}), nil
		})
	}
}

func has[K comparable](p Pair[K], key K) (bool, bool) {
	_, j := p.JSON.Peek(key)
	_, b := p.Bincode.Peek(key)
	return j, b
}

func assertGone[K comparable](t *testing.T, p Pair[K], key K) {
	t.Helper()
	j, b := has(p, key)
	assert.False(t, j, "%s still has %v", p.JSON.Name(), key)
	assert.False(t, b, "%s still has %v", p.Bincode.Name(), key)
}

func assertPresent[K comparable](t *testing.T, p Pair[K], key K) {
	t.Helper()
	j, b := has(p, key)
	assert.True(t, j, "%s lost %v", p.JSON.Name(), key)
	assert.True(t, b, "%s lost %v", p.Bincode.Name(), key)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Capacities: map[string]int{Shop: 5}}.Validate())
	assert.Error(t, Config{Capacities: map[string]int{Shop: 0}}.Validate())
	assert.Error(t, Config{Capacities: map[string]int{"shops": 5}}.Validate())
	assert.Error(t, Config{DefaultCapacity: -1}.Validate())
}

func TestCapacities(t *testing.T) {
	logger := zerolog.Nop()
	c, err := New(Config{DefaultCapacity: 7, Capacities: map[string]int{Shop: 3}, Logger: &logger})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Shop.JSON.Capacity())
	assert.Equal(t, 3, c.Shop.Bincode.Capacity())
	assert.Equal(t, 7, c.Owner.JSON.Capacity())
	assert.Equal(t, "shop_bin", c.Shop.Bincode.Name())

	c, err = New(Config{Logger: &logger})
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, c.ListShops.JSON.Capacity())
}

func TestPick(t *testing.T) {
	c := newTestCaches(t)
	assert.Same(t, c.Shop.JSON, c.Shop.Pick(contenttype.JSON))
	assert.Same(t, c.Shop.Bincode, c.Shop.Pick(contenttype.Bincode))
	assert.Equal(t, contenttype.Bincode, c.Shop.Bincode.ContentType())
}

func TestContentTypesAreIsolated(t *testing.T) {
	c := newTestCaches(t)
	fill(t, c.Shop, 1)

	j, _ := c.Shop.JSON.Peek(1)
	b, _ := c.Shop.Bincode.Peek(1)
	assert.Equal(t, "application/json", j.Header().Get("Content-Type"))
	assert.Equal(t, "application/octet-stream", b.Header().Get("Content-Type"))
	assert.NotEqual(t, j.Body(), b.Body())
}

func TestShopUpdated(t *testing.T) {
	c := newTestCaches(t)
	list := cachekey.DefaultListParams()
	fill(t, c.Shop, 1)
	fill(t, c.Shop, 2)
	fill(t, c.ListShops, list)

	c.ShopUpdated(1)
	c.Wait()

	assertGone(t, c.Shop, 1)
	assertPresent(t, c.Shop, 2)
	assertGone(t, c.ListShops, list)
}

func TestShopTransferred(t *testing.T) {
	c := newTestCaches(t)
	list := cachekey.DefaultListParams()
	fill(t, c.Shop, 1)
	fill(t, c.MerchandiseListByShopID, 1)
	fill(t, c.MerchandiseListByShopID, 2)
	fill(t, c.InteriorRefListByShopID, 1)
	fill(t, c.MerchandiseList, 5)
	fill(t, c.ListMerchandiseLists, list)
	fill(t, c.Owner, 1)

	c.ShopTransferred(1)
	c.Wait()

	assertGone(t, c.Shop, 1)
	assertGone(t, c.MerchandiseListByShopID, 1)
	assertPresent(t, c.MerchandiseListByShopID, 2)
	assertGone(t, c.InteriorRefListByShopID, 1)
	assertGone(t, c.MerchandiseList, 5)
	assertGone(t, c.ListMerchandiseLists, list)
	assertPresent(t, c.Owner, 1)
}

func TestShopDeletedCascades(t *testing.T) {
	c := newTestCaches(t)
	list := cachekey.DefaultListParams()
	fill(t, c.Shop, 1)
	fill(t, c.MerchandiseListByShopID, 1)
	fill(t, c.InteriorRefListByShopID, 1)
	fill(t, c.MerchandiseListByShopID, 2)
	fill(t, c.ListTransactionsByShopID, cachekey.ShopList{ShopID: 1, ListParams: list})

	c.ShopDeleted(1)
	c.Wait()

	assertGone(t, c.Shop, 1)
	assertGone(t, c.MerchandiseListByShopID, 1)
	assertGone(t, c.InteriorRefListByShopID, 1)
	assertPresent(t, c.MerchandiseListByShopID, 2)
	assertGone(t, c.ListTransactionsByShopID, cachekey.ShopList{ShopID: 1, ListParams: list})
}

func TestTransactionCreatedInvalidatesMerchandise(t *testing.T) {
	c := newTestCaches(t)
	list := cachekey.DefaultListParams()
	fill(t, c.MerchandiseList, 10)
	fill(t, c.MerchandiseListByShopID, 1)
	fill(t, c.ListMerchandiseLists, list)
	fill(t, c.ListTransactions, list)
	fill(t, c.Transaction, 5)

	c.TransactionCreated(1, 10)
	c.Wait()

	assertGone(t, c.MerchandiseList, 10)
	assertGone(t, c.MerchandiseListByShopID, 1)
	assertGone(t, c.ListMerchandiseLists, list)
	assertGone(t, c.ListTransactions, list)
	assertPresent(t, c.Transaction, 5)
}

func TestOwnerDeletedForgetsAPIKey(t *testing.T) {
	c := newTestCaches(t)
	key := uuid.New()
	_, err := c.OwnerIDsByAPIKey.Get(context.Background(), key, func(context.Context) (int64, error) {
		return 1, nil
	})
	require.NoError(t, err)
	fill(t, c.Owner, 1)
	fill(t, c.Shop, 3)

	c.OwnerDeleted(1, key)
	c.Wait()

	_, ok := c.OwnerIDsByAPIKey.Peek(key)
	assert.False(t, ok)
	assertGone(t, c.Owner, 1)
	assertGone(t, c.Shop, 3)
}

func TestInvalidateRecoversPanics(t *testing.T) {
	c := newTestCaches(t)
	c.Invalidate("broken", func() { panic("boom") })
	c.Wait()

	ran := false
	c.Invalidate("after", func() { ran = true })
	c.Wait()
	assert.True(t, ran)
}

func TestInvalidateAfterCloseRunsInline(t *testing.T) {
	c := newTestCaches(t)
	fill(t, c.Owner, 1)
	c.Close()

	c.OwnerUpdated(1)
	assertGone(t, c.Owner, 1)
}

func TestRegistryHoldsResponseCaches(t *testing.T) {
	c := newTestCaches(t)
	var _ *cache.ResponseCache[int64] = c.Transaction.JSON
	var _ *cache.ResponseCache[cachekey.ShopList] = c.ListTransactionsByShopID.Bincode
}
