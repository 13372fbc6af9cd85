package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

var MerchandiseListOrderable = []string{"id", "shop_id", "owner_id", "created_at", "updated_at"}

func (s *Store) GetMerchandiseList(ctx context.Context, id int64) (models.MerchandiseList, error) {
	var l models.MerchandiseList
	err := s.db.GetContext(ctx, &l, "SELECT * FROM merchandise_lists WHERE id = ?", id)
	return l, wrap("get merchandise list", err)
}

func (s *Store) GetMerchandiseListByShopID(ctx context.Context, shopID int64) (models.MerchandiseList, error) {
	var l models.MerchandiseList
	err := s.db.GetContext(ctx, &l, "SELECT * FROM merchandise_lists WHERE shop_id = ?", shopID)
	return l, wrap("get merchandise list by shop id", err)
}

func (s *Store) ListMerchandiseLists(ctx context.Context, p cachekey.ListParams) ([]models.MerchandiseList, error) {
	lists := []models.MerchandiseList{}
	err := s.db.SelectContext(ctx, &lists,
		listQuery("SELECT * FROM merchandise_lists", p.OrderClause()), p.Limit, p.Offset)
	return lists, wrap("list merchandise lists", err)
}

// CreateMerchandiseList saves the list for a shop owned by ownerID.
func (s *Store) CreateMerchandiseList(ctx context.Context, ownerID int64, posted models.PostedMerchandiseList) (models.MerchandiseList, error) {
	var l models.MerchandiseList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "shops", posted.ShopID, ownerID); err != nil {
			return err
		}
		id, err := insertMerchandiseList(ctx, tx, ownerID, posted.ShopID, posted.FormList)
		if err != nil {
			return err
		}
		return wrap("get created merchandise list",
			tx.GetContext(ctx, &l, "SELECT * FROM merchandise_lists WHERE id = ?", id))
	})
	return l, err
}

func (s *Store) UpdateMerchandiseList(ctx context.Context, ownerID, id int64, posted models.PostedMerchandiseList) (models.MerchandiseList, error) {
	var l models.MerchandiseList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "merchandise_lists", id, ownerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE merchandise_lists SET form_list = ?, updated_at = ? WHERE id = ?",
			posted.FormList, now(), id)
		if err != nil {
			return wrap("update merchandise list", err)
		}
		return wrap("get updated merchandise list",
			tx.GetContext(ctx, &l, "SELECT * FROM merchandise_lists WHERE id = ?", id))
	})
	return l, err
}

func (s *Store) UpdateMerchandiseListByShopID(ctx context.Context, ownerID, shopID int64, posted models.PostedMerchandiseList) (models.MerchandiseList, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, "SELECT id FROM merchandise_lists WHERE shop_id = ?", shopID)
	if err != nil {
		return models.MerchandiseList{}, wrap("get merchandise list by shop id", err)
	}
	return s.UpdateMerchandiseList(ctx, ownerID, id, posted)
}

// DeleteMerchandiseList deletes the list and returns the deleted row.
func (s *Store) DeleteMerchandiseList(ctx context.Context, ownerID, id int64) (models.MerchandiseList, error) {
	var l models.MerchandiseList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "merchandise_lists", id, ownerID); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &l, "SELECT * FROM merchandise_lists WHERE id = ?", id); err != nil {
			return wrap("get merchandise list", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM merchandise_lists WHERE id = ?", id)
		return wrap("delete merchandise list", err)
	})
	return l, err
}

func insertMerchandiseList(ctx context.Context, tx *sqlx.Tx, ownerID, shopID int64, forms models.FormList) (int64, error) {
	t := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO merchandise_lists
		(shop_id, owner_id, form_list, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		shopID, ownerID, forms, t, t)
	if err != nil {
		return 0, wrap("create merchandise list", err)
	}
	id, err := res.LastInsertId()
	return id, wrap("create merchandise list", err)
}
