package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SeedOwners inserts the bootstrap owner set, ignoring ids that are already
// present. Called once at startup with the configured owner list.
func (s *Store) SeedOwners(ctx context.Context, ownerIDs []int64) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("beginning seed transaction", err)
	}
	defer tx.Rollback()
	for _, id := range ownerIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO owners (user_id, added_at) VALUES (?, ?)`, id, now,
		); err != nil {
			return storageErr("seeding owner", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("committing seed", err)
	}
	return nil
}

// AddOwner grants mutation rights to userID. Adding an existing owner is a
// no-op, not an error.
func (s *Store) AddOwner(ctx context.Context, userID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO owners (user_id, added_at) VALUES (?, ?)`, userID, now,
	); err != nil {
		return storageErr("adding owner", err)
	}
	return nil
}

// IsOwner reports whether userID is on the owner allow-list.
func (s *Store) IsOwner(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM owners WHERE user_id = ?`, userID,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, storageErr("checking owner", err)
}

// ListOwners returns all owners ordered by id.
func (s *Store) ListOwners(ctx context.Context) ([]Owner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, added_at FROM owners ORDER BY user_id ASC`,
	)
	if err != nil {
		return nil, storageErr("listing owners", err)
	}
	defer rows.Close()

	var owners []Owner
	for rows.Next() {
		var o Owner
		var addedAt string
		if err := rows.Scan(&o.UserID, &addedAt); err != nil {
			return nil, storageErr("scanning owner row", err)
		}
		if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
			o.AddedAt = t
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating owner rows", err)
	}
	return owners, nil
}
