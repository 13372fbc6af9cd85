package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
)

// OwnerOrderable lists the columns owners can be sorted by.
var OwnerOrderable = []string{"id", "name", "mod_version", "created_at", "updated_at"}

// OwnerIDByAPIKey returns the id of the owner holding apiKey.
func (s *Store) OwnerIDByAPIKey(ctx context.Context, apiKey uuid.UUID) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, "SELECT id FROM owners WHERE api_key = ? LIMIT 1", apiKey)
	return id, wrap("get owner by api key", err)
}

func (s *Store) GetOwner(ctx context.Context, id int64) (models.Owner, error) {
	var owner models.Owner
	err := s.db.GetContext(ctx, &owner, "SELECT * FROM owners WHERE id = ?", id)
	return owner, wrap("get owner", err)
}

func (s *Store) ListOwners(ctx context.Context, p cachekey.ListParams) ([]models.Owner, error) {
	owners := []models.Owner{}
	err := s.db.SelectContext(ctx, &owners,
		listQuery("SELECT * FROM owners", p.OrderClause()), p.Limit, p.Offset)
	return owners, wrap("list owners", err)
}

func (s *Store) CreateOwner(ctx context.Context, posted models.PostedOwner, apiKey uuid.UUID, ipAddress *string) (models.Owner, error) {
	var owner models.Owner
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		t := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO owners
			(name, api_key, ip_address, mod_version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			posted.Name, apiKey, ipAddress, posted.ModVersion, t, t)
		if err != nil {
			return wrap("create owner", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrap("create owner", err)
		}
		return wrap("get created owner", tx.GetContext(ctx, &owner, "SELECT * FROM owners WHERE id = ?", id))
	})
	return owner, err
}

// UpdateOwner replaces the owner's fields. Owners may only update themselves.
func (s *Store) UpdateOwner(ctx context.Context, ownerID, id int64, posted models.PostedOwner) (models.Owner, error) {
	var owner models.Owner
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwnerSelf(ctx, tx, ownerID, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE owners SET name = ?, mod_version = ?, updated_at = ? WHERE id = ?",
			posted.Name, posted.ModVersion, now(), id)
		if err != nil {
			return wrap("update owner", err)
		}
		return wrap("get updated owner", tx.GetContext(ctx, &owner, "SELECT * FROM owners WHERE id = ?", id))
	})
	return owner, err
}

// DeleteOwner deletes the owner with everything it owns and returns the deleted row.
func (s *Store) DeleteOwner(ctx context.Context, ownerID, id int64) (models.Owner, error) {
	var owner models.Owner
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwnerSelf(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &owner, "SELECT * FROM owners WHERE id = ?", id); err != nil {
			return wrap("get owner", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM owners WHERE id = ?", id)
		return wrap("delete owner", err)
	})
	return owner, err
}

func checkOwnerSelf(ctx context.Context, tx *sqlx.Tx, ownerID, id int64) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, "SELECT 1 FROM owners WHERE id = ?", id)
	if err != nil {
		return wrap("get owner", err)
	}
	if ownerID != id {
		return ErrForbidden
	}
	return nil
}
