package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

var InteriorRefListOrderable = []string{"id", "shop_id", "owner_id", "created_at", "updated_at"}

func (s *Store) GetInteriorRefList(ctx context.Context, id int64) (models.InteriorRefList, error) {
	var l models.InteriorRefList
	err := s.db.GetContext(ctx, &l, "SELECT * FROM interior_ref_lists WHERE id = ?", id)
	return l, wrap("get interior ref list", err)
}

func (s *Store) GetInteriorRefListByShopID(ctx context.Context, shopID int64) (models.InteriorRefList, error) {
	var l models.InteriorRefList
	err := s.db.GetContext(ctx, &l, "SELECT * FROM interior_ref_lists WHERE shop_id = ?", shopID)
	return l, wrap("get interior ref list by shop id", err)
}

func (s *Store) ListInteriorRefLists(ctx context.Context, p cachekey.ListParams) ([]models.InteriorRefList, error) {
	lists := []models.InteriorRefList{}
	err := s.db.SelectContext(ctx, &lists,
		listQuery("SELECT * FROM interior_ref_lists", p.OrderClause()), p.Limit, p.Offset)
	return lists, wrap("list interior ref lists", err)
}

// CreateInteriorRefList saves the list for a shop owned by ownerID.
func (s *Store) CreateInteriorRefList(ctx context.Context, ownerID int64, posted models.PostedInteriorRefList) (models.InteriorRefList, error) {
	var l models.InteriorRefList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "shops", posted.ShopID, ownerID); err != nil {
			return err
		}
		id, err := insertInteriorRefList(ctx, tx, ownerID, posted.ShopID, posted.RefList)
		if err != nil {
			return err
		}
		return wrap("get created interior ref list",
			tx.GetContext(ctx, &l, "SELECT * FROM interior_ref_lists WHERE id = ?", id))
	})
	return l, err
}

func (s *Store) UpdateInteriorRefList(ctx context.Context, ownerID, id int64, posted models.PostedInteriorRefList) (models.InteriorRefList, error) {
	var l models.InteriorRefList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "interior_ref_lists", id, ownerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE interior_ref_lists SET ref_list = ?, updated_at = ? WHERE id = ?",
			posted.RefList, now(), id)
		if err != nil {
			return wrap("update interior ref list", err)
		}
		return wrap("get updated interior ref list",
			tx.GetContext(ctx, &l, "SELECT * FROM interior_ref_lists WHERE id = ?", id))
	})
	return l, err
}

func (s *Store) UpdateInteriorRefListByShopID(ctx context.Context, ownerID, shopID int64, posted models.PostedInteriorRefList) (models.InteriorRefList, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, "SELECT id FROM interior_ref_lists WHERE shop_id = ?", shopID)
	if err != nil {
		return models.InteriorRefList{}, wrap("get interior ref list by shop id", err)
	}
	return s.UpdateInteriorRefList(ctx, ownerID, id, posted)
}

// DeleteInteriorRefList deletes the list and returns the deleted row.
func (s *Store) DeleteInteriorRefList(ctx context.Context, ownerID, id int64) (models.InteriorRefList, error) {
	var l models.InteriorRefList
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "interior_ref_lists", id, ownerID); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &l, "SELECT * FROM interior_ref_lists WHERE id = ?", id); err != nil {
			return wrap("get interior ref list", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM interior_ref_lists WHERE id = ?", id)
		return wrap("delete interior ref list", err)
	})
	return l, err
}

func insertInteriorRefList(ctx context.Context, tx *sqlx.Tx, ownerID, shopID int64, refs models.InteriorRefs) (int64, error) {
	t := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO interior_ref_lists
		(shop_id, owner_id, ref_list, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		shopID, ownerID, refs, t, t)
	if err != nil {
		return 0, wrap("create interior ref list", err)
	}
	id, err := res.LastInsertId()
	return id, wrap("create interior ref list", err)
}
