// Package roster provides PostgreSQL-backed storage for the set of
// registered moderators. The store is a pure data capability: authorization
// for mutating it is enforced by the command layer, not here.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store manages the moderator roster in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new roster store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a moderator id. Adding an id that is already present is a
// no-op, not an error.
func (s *Store) Add(ctx context.Context, adminID int64) error {
	const query = `INSERT INTO admins (admin_id) VALUES ($1) ON CONFLICT DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, adminID); err != nil {
		return fmt.Errorf("roster: add: %w", err)
	}
	return nil
}

// Remove deletes a moderator id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, adminID int64) error {
	const query = `DELETE FROM admins WHERE admin_id = $1`

	if _, err := s.db.ExecContext(ctx, query, adminID); err != nil {
		return fmt.Errorf("roster: remove: %w", err)
	}
	return nil
}

// IsAdmin reports whether adminID is a registered moderator.
func (s *Store) IsAdmin(ctx context.Context, adminID int64) (bool, error) {
	const query = `SELECT 1 FROM admins WHERE admin_id = $1`

	var one int
	err := s.db.QueryRowContext(ctx, query, adminID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("roster: is admin: %w", err)
	}
	return true, nil
}

// List returns every registered moderator id. Order is unspecified;
// uniqueness is guaranteed by the primary key.
func (s *Store) List(ctx context.Context) ([]int64, error) {
	const query = `SELECT admin_id FROM admins`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("roster: list: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("roster: list scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roster: list rows: %w", err)
	}
	return ids, nil
}
