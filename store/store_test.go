package store

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("memory", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createOwner(t *testing.T, s *Store, name string) (models.Owner, uuid.UUID) {
	t.Helper()
	key := uuid.New()
	owner, err := s.CreateOwner(context.Background(), models.PostedOwner{Name: name, ModVersion: 1}, key, nil)
	require.NoError(t, err)
	return owner, key
}

func TestOwnerLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	ip := "127.0.0.1"
	key := uuid.New()

	owner, err := s.CreateOwner(ctx, models.PostedOwner{Name: "Alice", ModVersion: 3}, key, &ip)
	require.NoError(t, err)
	assert.NotZero(t, owner.ID)
	assert.Equal(t, "Alice", owner.Name)
	assert.Equal(t, key, owner.APIKey)
	assert.Equal(t, &ip, owner.IPAddress)
	assert.False(t, owner.CreatedAt.IsZero())

	id, err := s.OwnerIDByAPIKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, id)

	updated, err := s.UpdateOwner(ctx, owner.ID, owner.ID, models.PostedOwner{Name: "Alicia", ModVersion: 4})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, int32(4), updated.ModVersion)

	deleted, err := s.DeleteOwner(ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, key, deleted.APIKey)

	_, err = s.GetOwner(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.OwnerIDByAPIKey(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnersCannotChangeEachOther(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	alice, _ := createOwner(t, s, "Alice")
	bob, _ := createOwner(t, s, "Bob")

	_, err := s.UpdateOwner(ctx, bob.ID, alice.ID, models.PostedOwner{Name: "Mallory"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.DeleteOwner(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.DeleteOwner(ctx, bob.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateOwnerConflicts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := uuid.New()
	_, err := s.CreateOwner(ctx, models.PostedOwner{Name: "Alice"}, key, nil)
	require.NoError(t, err)
	_, err = s.CreateOwner(ctx, models.PostedOwner{Name: "Alice"}, key, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateShopCreatesLists(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")

	shop, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, shop.OwnerID)

	refs, err := s.GetInteriorRefListByShopID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Empty(t, refs.RefList)
	assert.Equal(t, owner.ID, refs.OwnerID)

	merch, err := s.GetMerchandiseListByShopID(ctx, shop.ID)
	require.NoError(t, err)
	assert.NotNil(t, merch.FormList)
	assert.Empty(t, merch.FormList)
}

func TestDeleteShopCascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")
	shop, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteShop(ctx, owner.ID, shop.ID))

	_, err = s.GetShop(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetMerchandiseListByShopID(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetInteriorRefListByShopID(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateShopTransfersOwnership(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	alice, _ := createOwner(t, s, "Alice")
	bob, _ := createOwner(t, s, "Bob")
	shop, err := s.CreateShop(ctx, alice.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)

	updated, err := s.UpdateShop(ctx, alice.ID, shop.ID, models.PostedShop{Name: "Bob's Goods", OwnerID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, updated.OwnerID)

	_, err = s.UpdateShop(ctx, alice.ID, shop.ID, models.PostedShop{Name: "Mine again"})
	assert.ErrorIs(t, err, ErrForbidden)

	merch, err := s.UpdateMerchandiseListByShopID(ctx, bob.ID, shop.ID, models.PostedMerchandiseList{})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, merch.OwnerID)
	_, err = s.UpdateMerchandiseListByShopID(ctx, alice.ID, shop.ID, models.PostedMerchandiseList{})
	assert.ErrorIs(t, err, ErrForbidden)

	interior, err := s.GetInteriorRefListByShopID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, interior.OwnerID)
	_, err = s.UpdateInteriorRefListByShopID(ctx, alice.ID, shop.ID, models.PostedInteriorRefList{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListShopsPaging(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: name})
		require.NoError(t, err)
	}

	p := cachekey.ListParams{Limit: 2, Offset: 0, OrderBy: "name", Order: cachekey.Asc}
	shops, err := s.ListShops(ctx, p)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "a", shops[0].Name)
	assert.Equal(t, "b", shops[1].Name)

	p.Offset = 2
	shops, err = s.ListShops(ctx, p)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "c", shops[0].Name)
}

func TestUpdateListsByShopID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")
	shop, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)

	forms := models.FormList{{ModName: "Skyrim.esm", LocalFormID: 1, Name: "Iron Dagger", Quantity: 5, Price: 10}}
	merch, err := s.UpdateMerchandiseListByShopID(ctx, owner.ID, shop.ID, models.PostedMerchandiseList{FormList: forms})
	require.NoError(t, err)
	assert.Equal(t, forms, merch.FormList)

	refs := models.InteriorRefs{{BaseModName: "Skyrim.esm", BaseLocalFormID: 7, Scale: 100}}
	interior, err := s.UpdateInteriorRefListByShopID(ctx, owner.ID, shop.ID, models.PostedInteriorRefList{RefList: refs})
	require.NoError(t, err)
	assert.Equal(t, refs, interior.RefList)

	_, err = s.UpdateMerchandiseListByShopID(ctx, owner.ID, 999, models.PostedMerchandiseList{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSecondListForShopConflicts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")
	shop, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)

	_, err = s.CreateMerchandiseList(ctx, owner.ID, models.PostedMerchandiseList{ShopID: shop.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTransactionsAdjustMerchandise(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	owner, _ := createOwner(t, s, "Alice")
	shop, err := s.CreateShop(ctx, owner.ID, models.PostedShop{Name: "General Goods"})
	require.NoError(t, err)

	sell := models.PostedTransaction{
		ShopID: shop.ID, ModName: "Skyrim.esm", LocalFormID: 1, Name: "Iron Dagger",
		Price: 10, IsSell: true, Quantity: 3, Amount: 30,
	}
	tx, list, err := s.CreateTransaction(ctx, owner.ID, sell)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, tx.ShopID)
	assert.True(t, tx.IsSell)
	require.Len(t, list.FormList, 1)
	assert.Equal(t, int32(3), list.FormList[0].Quantity)

	buy := sell
	buy.IsSell = false
	buy.Quantity = 2
	_, list, err = s.CreateTransaction(ctx, owner.ID, buy)
	require.NoError(t, err)
	assert.Equal(t, int32(1), list.FormList[0].Quantity)

	buy.Quantity = 5
	_, _, err = s.CreateTransaction(ctx, owner.ID, buy)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	all, err := s.ListTransactionsByShopID(ctx, shop.ID, cachekey.DefaultListParams())
	require.NoError(t, err)
	assert.Len(t, all, 2, "the rejected purchase was rolled back")

	deleted, err := s.DeleteTransaction(ctx, owner.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, deleted.ID)
	_, err = s.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyTransactionDoesNotModifyInput(t *testing.T) {
	forms := models.FormList{{ModName: "a", LocalFormID: 1, Quantity: 4}}
	updated, err := applyTransaction(forms, models.PostedTransaction{ModName: "a", LocalFormID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(3), updated[0].Quantity)
	assert.Equal(t, int32(4), forms[0].Quantity)
}

func TestApplyTransactionRejectsQuantityOverflow(t *testing.T) {
	forms := models.FormList{{ModName: "a", LocalFormID: 1, Quantity: math.MaxInt32}}
	_, err := applyTransaction(forms, models.PostedTransaction{ModName: "a", LocalFormID: 1, IsSell: true, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrInvalid)
	assert.Equal(t, int32(math.MaxInt32), forms[0].Quantity)

	updated, err := applyTransaction(forms, models.PostedTransaction{ModName: "a", LocalFormID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32-1), updated[0].Quantity)
}
