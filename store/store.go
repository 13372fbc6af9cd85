// Package store persists the bazaar resources in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the row belongs to another owner.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a uniqueness or foreign key constraint was violated.
	ErrConflict = errors.New("conflict")
	// ErrInsufficientQuantity means a shop does not stock enough of an item for a transaction.
	ErrInsufficientQuantity = errors.New("not enough quantity")
)

// Store is safe for concurrent use.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open opens (and if needed creates) the database at filename.
// "memory" or an empty name opens a private in-memory database.
func Open(filename string, logger zerolog.Logger) (*Store, error) {
	if filename == "" || filename == "memory" {
		filename = ":memory:"
	}
	db, err := sqlx.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: in-memory databases are per connection, and sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	s := &Store{
		db:  db,
		log: logger.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA journal_mode = WAL"} {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}
	for i, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}
	s.log.Debug().Int("statements", len(schema)).Msg("Schema ready")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		api_key TEXT NOT NULL,
		ip_address TEXT,
		mod_version INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (name, api_key)
	)`,
	`CREATE INDEX IF NOT EXISTS owners_api_key_idx ON owners (api_key)`,
	`CREATE TABLE IF NOT EXISTS shops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES owners (id) ON DELETE CASCADE,
		description TEXT,
		is_not_sell_buy BOOLEAN NOT NULL DEFAULT 1,
		sell_buy_list_id INTEGER NOT NULL DEFAULT 0,
		vendor_id INTEGER NOT NULL DEFAULT 0,
		vendor_gold INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (name, owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS shops_owner_id_idx ON shops (owner_id)`,
	`CREATE TABLE IF NOT EXISTS interior_ref_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shop_id INTEGER NOT NULL UNIQUE REFERENCES shops (id) ON DELETE CASCADE,
		owner_id INTEGER NOT NULL REFERENCES owners (id) ON DELETE CASCADE,
		ref_list TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS merchandise_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shop_id INTEGER NOT NULL UNIQUE REFERENCES shops (id) ON DELETE CASCADE,
		owner_id INTEGER NOT NULL REFERENCES owners (id) ON DELETE CASCADE,
		form_list TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shop_id INTEGER NOT NULL REFERENCES shops (id) ON DELETE CASCADE,
		owner_id INTEGER NOT NULL REFERENCES owners (id) ON DELETE CASCADE,
		mod_name TEXT NOT NULL,
		local_form_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		form_type INTEGER NOT NULL,
		is_food BOOLEAN NOT NULL,
		price INTEGER NOT NULL,
		is_sell BOOLEAN NOT NULL,
		quantity INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_shop_id_idx ON transactions (shop_id)`,
}

// now is the timestamp stored in created_at/updated_at columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// wrap converts driver errors into the package's sentinel errors.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// checkOwner returns ErrNotFound if the row does not exist and ErrForbidden if
// it is not owned by ownerID. table is always a constant.
func checkOwner(ctx context.Context, tx *sqlx.Tx, table string, id, ownerID int64) error {
	var rowOwner int64
	err := tx.GetContext(ctx, &rowOwner, "SELECT owner_id FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return wrap("get "+table+" owner", err)
	}
	if rowOwner != ownerID {
		return fmt.Errorf("%s %d: %w", table, id, ErrForbidden)
	}
	return nil
}

// inTx runs fn in a transaction, committing if it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("Could not roll back")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// listQuery appends the ordering and paging of p to a SELECT statement.
// The order column has been checked against a whitelist when p was parsed.
func listQuery(base string, orderClause string) string {
	return base + " ORDER BY " + orderClause + ", id DESC LIMIT ? OFFSET ?"
}
