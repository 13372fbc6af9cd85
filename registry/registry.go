// Package registry holds every cache the API serves from.
//
// The registry is created once at startup and handed to the HTTP server.
// Responses are cached per content type, so most caches come in pairs.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/always-cache/bazaar/cache"
	contenttype "github.com/always-cache/bazaar/pkg/content-type"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

// DefaultCapacity is used for caches without a configured capacity.
const DefaultCapacity = 100

// Cache names, as used in configuration and diagnostics.
const (
	OwnerIDsByAPIKey         = "owner_ids_by_api_key"
	Owner                    = "owner"
	Shop                     = "shop"
	InteriorRefList          = "interior_ref_list"
	InteriorRefListByShopID  = "interior_ref_list_by_shop_id"
	MerchandiseList          = "merchandise_list"
	MerchandiseListByShopID  = "merchandise_list_by_shop_id"
	Transaction              = "transaction"
	ListOwners               = "list_owners"
	ListShops                = "list_shops"
	ListInteriorRefLists     = "list_interior_ref_lists"
	ListMerchandiseLists     = "list_merchandise_lists"
	ListTransactions         = "list_transactions"
	ListTransactionsByShopID = "list_transactions_by_shop_id"
)

// Names lists every cache name.
var Names = []string{
	OwnerIDsByAPIKey,
	Owner, Shop, InteriorRefList, InteriorRefListByShopID, MerchandiseList, MerchandiseListByShopID, Transaction,
	ListOwners, ListShops, ListInteriorRefLists, ListMerchandiseLists, ListTransactions, ListTransactionsByShopID,
}

type Config struct {
	// Capacity for caches not listed in Capacities.
	DefaultCapacity int
	// Capacity per cache name. Both content types of a pair get this capacity.
	Capacities map[string]int
	// Maps compute errors to problem documents. problem.FromError is used if nil.
	ProblemMapper cache.ProblemMapper
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
}

// Validate checks that every capacity is usable and every name is known.
func (c Config) Validate() error {
	if c.DefaultCapacity < 0 {
		return fmt.Errorf("default cache capacity must be positive, got %d", c.DefaultCapacity)
	}
	for name, capacity := range c.Capacities {
		if !isName(name) {
			return fmt.Errorf("unknown cache %q", name)
		}
		if capacity < 1 {
			return fmt.Errorf("cache %s: capacity must be positive, got %d", name, capacity)
		}
	}
	return nil
}

func (c Config) capacity(name string) int {
	if capacity, ok := c.Capacities[name]; ok {
		return capacity
	}
	if c.DefaultCapacity > 0 {
		return c.DefaultCapacity
	}
	return DefaultCapacity
}

// Pair is the JSON and Bincode variant of one response cache.
type Pair[K comparable] struct {
	JSON    *cache.ResponseCache[K]
	Bincode *cache.ResponseCache[K]
}

// Pick returns the variant for ct.
func (p Pair[K]) Pick(ct contenttype.ContentType) *cache.ResponseCache[K] {
	switch ct {
	case contenttype.Bincode:
		return p.Bincode
	default:
		return p.JSON
	}
}

// Delete removes key from both variants.
func (p Pair[K]) Delete(key K) {
	p.JSON.DeleteResponse(key)
	p.Bincode.DeleteResponse(key)
}

// Clear empties both variants.
func (p Pair[K]) Clear() {
	p.JSON.Clear()
	p.Bincode.Clear()
}

func newPair[K comparable](cfg Config, logger zerolog.Logger, name string) Pair[K] {
	capacity := cfg.capacity(name)
	return Pair[K]{
		JSON:    cache.NewResponseCache[K](name, capacity, contenttype.JSON, cfg.ProblemMapper, cache.WithLogger(logger)),
		Bincode: cache.NewResponseCache[K](name+"_bin", capacity, contenttype.Bincode, cfg.ProblemMapper, cache.WithLogger(logger)),
	}
}

// Caches is the registry. Create it with New and release it with Close.
type Caches struct {
	OwnerIDsByAPIKey *cache.Cache[uuid.UUID, int64]

	Owner                   Pair[int64]
	Shop                    Pair[int64]
	InteriorRefList         Pair[int64]
	InteriorRefListByShopID Pair[int64]
	MerchandiseList         Pair[int64]
	MerchandiseListByShopID Pair[int64]
	Transaction             Pair[int64]

	ListOwners               Pair[cachekey.ListParams]
	ListShops                Pair[cachekey.ListParams]
	ListInteriorRefLists     Pair[cachekey.ListParams]
	ListMerchandiseLists     Pair[cachekey.ListParams]
	ListTransactions         Pair[cachekey.ListParams]
	ListTransactionsByShopID Pair[cachekey.ShopList]

	log     zerolog.Logger
	pending sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New builds every cache. It fails only if cfg is invalid.
func New(cfg Config) (*Caches, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var logger zerolog.Logger
	if cfg.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("component", "caches").Logger()

	c := &Caches{
		OwnerIDsByAPIKey: cache.New[uuid.UUID, int64](OwnerIDsByAPIKey, cfg.capacity(OwnerIDsByAPIKey),
			cache.WithLogger(logger), cache.WithLogKeys(false)),

		Owner:                   newPair[int64](cfg, logger, Owner),
		Shop:                    newPair[int64](cfg, logger, Shop),
		InteriorRefList:         newPair[int64](cfg, logger, InteriorRefList),
		InteriorRefListByShopID: newPair[int64](cfg, logger, InteriorRefListByShopID),
		MerchandiseList:         newPair[int64](cfg, logger, MerchandiseList),
		MerchandiseListByShopID: newPair[int64](cfg, logger, MerchandiseListByShopID),
		Transaction:             newPair[int64](cfg, logger, Transaction),

		ListOwners:               newPair[cachekey.ListParams](cfg, logger, ListOwners),
		ListShops:                newPair[cachekey.ListParams](cfg, logger, ListShops),
		ListInteriorRefLists:     newPair[cachekey.ListParams](cfg, logger, ListInteriorRefLists),
		ListMerchandiseLists:     newPair[cachekey.ListParams](cfg, logger, ListMerchandiseLists),
		ListTransactions:         newPair[cachekey.ListParams](cfg, logger, ListTransactions),
		ListTransactionsByShopID: newPair[cachekey.ShopList](cfg, logger, ListTransactionsByShopID),

		log: logger,
	}
	logger.Debug().Int("caches", len(Names)).Msg("Caches created")
	return c, nil
}

func isName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
