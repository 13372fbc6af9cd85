package store

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

var TransactionOrderable = []string{"id", "shop_id", "owner_id", "mod_name", "amount", "quantity", "created_at", "updated_at"}

func (s *Store) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	var t models.Transaction
	err := s.db.GetContext(ctx, &t, "SELECT * FROM transactions WHERE id = ?", id)
	return t, wrap("get transaction", err)
}

func (s *Store) ListTransactions(ctx context.Context, p cachekey.ListParams) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions,
		listQuery("SELECT * FROM transactions", p.OrderClause()), p.Limit, p.Offset)
	return transactions, wrap("list transactions", err)
}

func (s *Store) ListTransactionsByShopID(ctx context.Context, shopID int64, p cachekey.ListParams) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions,
		listQuery("SELECT * FROM transactions WHERE shop_id = ?", p.OrderClause()), shopID, p.Limit, p.Offset)
	return transactions, wrap("list transactions by shop id", err)
}

// CreateTransaction records a sale or purchase in a shop owned by ownerID and applies it to
// the shop's merchandise list: selling to the shop adds stock, buying from it removes stock.
// It returns the saved transaction and the merchandise list it changed.
func (s *Store) CreateTransaction(ctx context.Context, ownerID int64, posted models.PostedTransaction) (models.Transaction, models.MerchandiseList, error) {
	var (
		transaction models.Transaction
		list        models.MerchandiseList
	)
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "shops", posted.ShopID, ownerID); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &list, "SELECT * FROM merchandise_lists WHERE shop_id = ?", posted.ShopID); err != nil {
			return wrap("get merchandise list by shop id", err)
		}
		forms, err := applyTransaction(list.FormList, posted)
		if err != nil {
			return err
		}

		t := now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE merchandise_lists SET form_list = ?, updated_at = ? WHERE id = ?",
			forms, t, list.ID); err != nil {
			return wrap("update merchandise quantity", err)
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO transactions
			(shop_id, owner_id, mod_name, local_form_id, name, form_type, is_food, price, is_sell, quantity, amount, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			posted.ShopID, ownerID, posted.ModName, posted.LocalFormID, posted.Name, posted.FormType,
			posted.IsFood, posted.Price, posted.IsSell, posted.Quantity, posted.Amount, t, t)
		if err != nil {
			return wrap("create transaction", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrap("create transaction", err)
		}
		if err := tx.GetContext(ctx, &transaction, "SELECT * FROM transactions WHERE id = ?", id); err != nil {
			return wrap("get created transaction", err)
		}
		return wrap("get updated merchandise list",
			tx.GetContext(ctx, &list, "SELECT * FROM merchandise_lists WHERE id = ?", list.ID))
	})
	return transaction, list, err
}

// applyTransaction returns a copy of forms with the transaction's quantity applied.
func applyTransaction(forms models.FormList, t models.PostedTransaction) (models.FormList, error) {
	updated := append(models.FormList{}, forms...)
	i := updated.Find(t.ModName, t.LocalFormID)
	if t.IsSell {
		if i < 0 {
			return append(updated, models.Merchandise{
				ModName:     t.ModName,
				LocalFormID: t.LocalFormID,
				Name:        t.Name,
				Quantity:    t.Quantity,
				FormType:    t.FormType,
				IsFood:      t.IsFood,
				Price:       t.Price,
			}), nil
		}
		if updated[i].Quantity > math.MaxInt32-t.Quantity {
			return nil, fmt.Errorf("%w: quantity of %s %d would exceed %d", models.ErrInvalid, t.ModName, t.LocalFormID, math.MaxInt32)
		}
		updated[i].Quantity += t.Quantity
		return updated, nil
	}
	if i < 0 || updated[i].Quantity < t.Quantity {
		return nil, fmt.Errorf("%s %d: %w", t.ModName, t.LocalFormID, ErrInsufficientQuantity)
	}
	updated[i].Quantity -= t.Quantity
	return updated, nil
}

// DeleteTransaction deletes the transaction and returns the deleted row.
// Merchandise quantities are not restored.
func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id int64) (models.Transaction, error) {
	var t models.Transaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "transactions", id, ownerID); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &t, "SELECT * FROM transactions WHERE id = ?", id); err != nil {
			return wrap("get transaction", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
		return wrap("delete transaction", err)
	})
	return t, err
}
