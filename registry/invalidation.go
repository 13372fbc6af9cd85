package registry

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invalidations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bazaar_cache_invalidations_total",
		Help: "Invalidation plans dispatched after writes",
	},
	[]string{"plan"},
)

// Invalidate runs fn on its own goroutine and returns immediately.
// Invalidation is best effort: readers may see stale entries until fn has run.
// After Close, fn runs synchronously instead.
func (c *Caches) Invalidate(plan string, fn func()) {
	invalidations.WithLabelValues(plan).Inc()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.run(plan, fn)
		return
	}
	c.pending.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.pending.Done()
		c.run(plan, fn)
	}()
}

func (c *Caches) run(plan string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("plan", plan).Interface("panic", r).Msg("Invalidation failed")
		}
	}()
	fn()
	c.log.Trace().Str("plan", plan).Msg("Invalidated")
}

// Wait blocks until every dispatched invalidation has finished.
// It must not run concurrently with Invalidate: call it once the writes whose
// invalidations it waits for have returned. Use Close at shutdown.
func (c *Caches) Wait() {
	c.pending.Wait()
}

// Close waits for pending invalidations. The caches stay usable.
func (c *Caches) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.pending.Wait()
}

// The plans below describe which entries a committed write makes stale.
// Entries keyed by id or shop id are deleted, list caches are cleared, and
// writes that change another resource invalidate that resource as well.

func (c *Caches) OwnerCreated() {
	c.Invalidate("owner_created", func() {
		c.ListOwners.Clear()
	})
}

func (c *Caches) OwnerUpdated(id int64) {
	c.Invalidate("owner_updated", func() {
		c.Owner.Delete(id)
		c.ListOwners.Clear()
	})
}

// OwnerDeleted also drops the api key and everything the owner's rows cascaded to.
func (c *Caches) OwnerDeleted(id int64, apiKey uuid.UUID) {
	c.Invalidate("owner_deleted", func() {
		c.Owner.Delete(id)
		c.OwnerIDsByAPIKey.Delete(apiKey)
		c.ListOwners.Clear()

		c.Shop.Clear()
		c.InteriorRefList.Clear()
		c.InteriorRefListByShopID.Clear()
		c.MerchandiseList.Clear()
		c.MerchandiseListByShopID.Clear()
		c.Transaction.Clear()
		c.clearShopLists()
	})
}

// ShopCreated covers the shop and the empty lists created with it.
func (c *Caches) ShopCreated(id int64) {
	c.Invalidate("shop_created", func() {
		c.InteriorRefListByShopID.Delete(id)
		c.MerchandiseListByShopID.Delete(id)
		c.ListShops.Clear()
		c.ListInteriorRefLists.Clear()
		c.ListMerchandiseLists.Clear()
	})
}

func (c *Caches) ShopUpdated(id int64) {
	c.Invalidate("shop_updated", func() {
		c.Shop.Delete(id)
		c.ListShops.Clear()
	})
}

// ShopTransferred is used instead of ShopUpdated when the shop changed owner,
// which also changes the owner of both of its lists.
func (c *Caches) ShopTransferred(id int64) {
	c.Invalidate("shop_transferred", func() {
		c.Shop.Delete(id)
		c.ListShops.Clear()

		c.InteriorRefListByShopID.Delete(id)
		c.MerchandiseListByShopID.Delete(id)
		c.InteriorRefList.Clear()
		c.MerchandiseList.Clear()
		c.ListInteriorRefLists.Clear()
		c.ListMerchandiseLists.Clear()
	})
}

// ShopDeleted also covers the lists and transactions deleted with the shop.
// Their ids are not known here, so the by-id caches of those resources are cleared.
func (c *Caches) ShopDeleted(id int64) {
	c.Invalidate("shop_deleted", func() {
		c.Shop.Delete(id)
		c.InteriorRefListByShopID.Delete(id)
		c.MerchandiseListByShopID.Delete(id)
		c.InteriorRefList.Clear()
		c.MerchandiseList.Clear()
		c.Transaction.Clear()
		c.clearShopLists()
	})
}

func (c *Caches) clearShopLists() {
	c.ListShops.Clear()
	c.ListInteriorRefLists.Clear()
	c.ListMerchandiseLists.Clear()
	c.ListTransactions.Clear()
	c.ListTransactionsByShopID.Clear()
}

func (c *Caches) InteriorRefListCreated(shopID int64) {
	c.Invalidate("interior_ref_list_created", func() {
		c.InteriorRefListByShopID.Delete(shopID)
		c.ListInteriorRefLists.Clear()
	})
}

// InteriorRefListChanged is used after an update or delete.
func (c *Caches) InteriorRefListChanged(id, shopID int64) {
	c.Invalidate("interior_ref_list_changed", func() {
		c.InteriorRefList.Delete(id)
		c.InteriorRefListByShopID.Delete(shopID)
		c.ListInteriorRefLists.Clear()
	})
}

func (c *Caches) MerchandiseListCreated(shopID int64) {
	c.Invalidate("merchandise_list_created", func() {
		c.MerchandiseListByShopID.Delete(shopID)
		c.ListMerchandiseLists.Clear()
	})
}

// MerchandiseListChanged is used after an update or delete.
func (c *Caches) MerchandiseListChanged(id, shopID int64) {
	c.Invalidate("merchandise_list_changed", func() {
		c.MerchandiseList.Delete(id)
		c.MerchandiseListByShopID.Delete(shopID)
		c.ListMerchandiseLists.Clear()
	})
}

// TransactionCreated also covers the merchandise list whose quantities the transaction changed.
func (c *Caches) TransactionCreated(shopID, merchandiseListID int64) {
	c.Invalidate("transaction_created", func() {
		c.ListTransactions.Clear()
		c.ListTransactionsByShopID.Clear()

		c.MerchandiseList.Delete(merchandiseListID)
		c.MerchandiseListByShopID.Delete(shopID)
		c.ListMerchandiseLists.Clear()
	})
}

func (c *Caches) TransactionDeleted(id int64) {
	c.Invalidate("transaction_deleted", func() {
		c.Transaction.Delete(id)
		c.ListTransactions.Clear()
		c.ListTransactionsByShopID.Clear()
	})
}
