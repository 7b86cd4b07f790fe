// Package warnings provides PostgreSQL-backed storage for per-user warning
// counts. Counts are keyed by (user_id, chat_id); an absent row is
// equivalent to a count of zero.
package warnings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store manages warning counts in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new warning store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record increments the warning count for (userID, chatID) and returns the
// post-increment value, creating the row at count 1 if absent. The whole
// operation is a single UPSERT statement, so concurrent calls for the same
// key are serialized by the database and each caller observes a distinct
// sequential count.
func (s *Store) Record(ctx context.Context, userID, chatID int64) (int, error) {
	const query = `
		INSERT INTO warnings (user_id, chat_id, warning_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, chat_id)
		DO UPDATE SET warning_count = warnings.warning_count + 1
		RETURNING warning_count`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, chatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("warnings: record: %w", err)
	}
	return count, nil
}

// Get returns the current warning count for (userID, chatID).
// An absent row is not an error; it reads as zero.
func (s *Store) Get(ctx context.Context, userID, chatID int64) (int, error) {
	const query = `
		SELECT warning_count FROM warnings
		WHERE user_id = $1 AND chat_id = $2`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, chatID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("warnings: get: %w", err)
	}
	return count, nil
}

// Reset deletes the warning record for (userID, chatID), returning the count
// to zero. Resetting an absent key is a no-op.
func (s *Store) Reset(ctx context.Context, userID, chatID int64) error {
	const query = `DELETE FROM warnings WHERE user_id = $1 AND chat_id = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("warnings: reset: %w", err)
	}
	return nil
}
