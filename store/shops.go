package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

var ShopOrderable = []string{"id", "name", "owner_id", "vendor_gold", "created_at", "updated_at"}

func (s *Store) GetShop(ctx context.Context, id int64) (models.Shop, error) {
	var shop models.Shop
	err := s.db.GetContext(ctx, &shop, "SELECT * FROM shops WHERE id = ?", id)
	return shop, wrap("get shop", err)
}

func (s *Store) ListShops(ctx context.Context, p cachekey.ListParams) ([]models.Shop, error) {
	shops := []models.Shop{}
	err := s.db.SelectContext(ctx, &shops,
		listQuery("SELECT * FROM shops", p.OrderClause()), p.Limit, p.Offset)
	return shops, wrap("list shops", err)
}

// CreateShop saves a new shop along with its empty interior ref list and merchandise list.
func (s *Store) CreateShop(ctx context.Context, ownerID int64, posted models.PostedShop) (models.Shop, error) {
	var shop models.Shop
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		t := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO shops
			(name, owner_id, description, is_not_sell_buy, sell_buy_list_id, vendor_id, vendor_gold, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			posted.Name, ownerID, posted.Description, posted.IsNotSellBuy, posted.SellBuyListID,
			posted.VendorID, posted.VendorGold, t, t)
		if err != nil {
			return wrap("create shop", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrap("create shop", err)
		}
		if _, err := insertInteriorRefList(ctx, tx, ownerID, id, models.InteriorRefs{}); err != nil {
			return err
		}
		if _, err := insertMerchandiseList(ctx, tx, ownerID, id, models.FormList{}); err != nil {
			return err
		}
		return wrap("get created shop", tx.GetContext(ctx, &shop, "SELECT * FROM shops WHERE id = ?", id))
	})
	return shop, err
}

// UpdateShop replaces the shop's fields. If posted.OwnerID is set the shop is
// transferred together with its interior ref list and merchandise list.
func (s *Store) UpdateShop(ctx context.Context, ownerID, id int64, posted models.PostedShop) (models.Shop, error) {
	var shop models.Shop
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "shops", id, ownerID); err != nil {
			return err
		}
		newOwner := ownerID
		if posted.OwnerID != nil {
			newOwner = *posted.OwnerID
		}
		_, err := tx.ExecContext(ctx, `UPDATE shops SET
			name = ?, owner_id = ?, description = ?, is_not_sell_buy = ?, sell_buy_list_id = ?,
			vendor_id = ?, vendor_gold = ?, updated_at = ?
			WHERE id = ?`,
			posted.Name, newOwner, posted.Description, posted.IsNotSellBuy, posted.SellBuyListID,
			posted.VendorID, posted.VendorGold, now(), id)
		if err != nil {
			return wrap("update shop", err)
		}
		if newOwner != ownerID {
			for _, table := range []string{"interior_ref_lists", "merchandise_lists"} {
				_, err := tx.ExecContext(ctx, "UPDATE "+table+" SET owner_id = ?, updated_at = ? WHERE shop_id = ?", newOwner, now(), id)
				if err != nil {
					return wrap("transfer "+table, err)
				}
			}
		}
		return wrap("get updated shop", tx.GetContext(ctx, &shop, "SELECT * FROM shops WHERE id = ?", id))
	})
	return shop, err
}

// DeleteShop deletes the shop. Its lists and transactions are removed with it.
func (s *Store) DeleteShop(ctx context.Context, ownerID, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "shops", id, ownerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM shops WHERE id = ?", id)
		return wrap("delete shop", err)
	})
}
