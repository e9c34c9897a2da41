package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RecordSelection stores that entry was selected from channel.
func (s *Store) RecordSelection(ctx context.Context, channel, entry string) error {
	if entry == "" {
		return errors.New("record selection: empty entry")
	}
	db, release, err := s.conn()
	if err != nil {
		return err
	}
	defer release()

	_, err = db.ExecContext(ctx,
		`INSERT INTO selections (id, channel, entry, selected_at_ms) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), channel, entry, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	return nil
}

// Recent returns distinct selected entries, most recent first. An empty
// channel matches every channel; limit <= 0 means no limit.
func (s *Store) Recent(ctx context.Context, channel string, limit int) ([]string, error) {
	db, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.QueryContext(ctx, `
		SELECT entry
		FROM selections
		WHERE (? = '' OR channel = ?)
		GROUP BY entry
		ORDER BY MAX(selected_at_ms) DESC, MAX(rowid) DESC
		LIMIT ?
	`, channel, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent selections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return out, nil
}

// Prune deletes all but the newest keep selections and returns how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	db, release, err := s.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	res, err := db.ExecContext(ctx, `
		DELETE FROM selections
		WHERE id NOT IN (
			SELECT id FROM selections
			ORDER BY selected_at_ms DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	return n, nil
}
