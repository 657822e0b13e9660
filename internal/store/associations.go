package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/clipdex/internal/phrase"
)

// Remember stores a (phrase, video) association for ownerID. The phrase is
// normalized before anything touches the database.
//
// Re-remembering an existing pair by the same owner is an idempotent upsert:
// the row count stays at one and created_at is refreshed, so a re-taught
// phrase counts as recent for ranking. The same pair taught by a different
// owner fails with ErrDuplicate.
func (s *Store) Remember(ctx context.Context, rawPhrase, videoID string, ownerID int64) (Association, error) {
	p := phrase.Normalize(rawPhrase)
	if p == "" {
		return Association{}, fmt.Errorf("%w: empty phrase", ErrInvalidInput)
	}
	if videoID == "" {
		return Association{}, fmt.Errorf("%w: empty video reference", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Association{}, storageErr("beginning remember transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existing Association
	var createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT seq, id, owner_id, created_at FROM associations WHERE phrase = ? AND video_id = ?`,
		p, videoID,
	).Scan(&existing.Seq, &existing.ID, &existing.OwnerID, &createdAt)
	switch {
	case err == nil:
		if existing.OwnerID != ownerID {
			return Association{}, fmt.Errorf("%w: %q is already taught by owner %d", ErrDuplicate, p, existing.OwnerID)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE associations SET created_at = ? WHERE seq = ?`,
			now.Format(time.RFC3339), existing.Seq,
		); err != nil {
			return Association{}, storageErr("refreshing association", err)
		}
		if err := tx.Commit(); err != nil {
			return Association{}, storageErr("committing remember", err)
		}
		existing.Phrase = p
		existing.VideoID = videoID
		existing.CreatedAt = now
		return existing, nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to insert
	default:
		return Association{}, storageErr("looking up association", err)
	}

	a := Association{
		ID:        uuid.NewString(),
		Phrase:    p,
		VideoID:   videoID,
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO associations (id, phrase, video_id, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Phrase, a.VideoID, a.OwnerID, now.Format(time.RFC3339),
	)
	if err != nil {
		return Association{}, storageErr("inserting association", err)
	}
	if a.Seq, err = res.LastInsertId(); err != nil {
		return Association{}, storageErr("reading inserted seq", err)
	}
	if err := tx.Commit(); err != nil {
		return Association{}, storageErr("committing remember", err)
	}
	return a, nil
}

// Delete removes all associations for the normalized phrase owned by ownerID
// and reports how many rows went away. A phrase held only by other owners
// deletes nothing and returns (0, nil); a phrase with no rows at all returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, rawPhrase string, ownerID int64) (int, error) {
	p := phrase.Normalize(rawPhrase)
	if p == "" {
		return 0, fmt.Errorf("%w: empty phrase", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("beginning delete transaction", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM associations WHERE phrase = ?`, p,
	).Scan(&total); err != nil {
		return 0, storageErr("counting phrase rows", err)
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: phrase %q", ErrNotFound, p)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM associations WHERE phrase = ? AND owner_id = ?`, p, ownerID,
	)
	if err != nil {
		return 0, storageErr("deleting associations", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("reading deleted row count", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("committing delete", err)
	}
	return int(n), nil
}

// ListAll returns associations ordered by creation sequence ascending, for
// pagination. Count supplies the total separately.
func (s *Store) ListAll(ctx context.Context, offset, limit int) ([]Association, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, phrase, video_id, owner_id, created_at
		FROM associations ORDER BY seq ASC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, storageErr("listing associations", err)
	}
	defer rows.Close()
	return scanAssociations(rows)
}

// Count returns the total number of stored associations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM associations`).Scan(&n); err != nil {
		return 0, storageErr("counting associations", err)
	}
	return n, nil
}

// Candidates returns the full candidate set for the matcher. No pre-filter is
// applied: the subsequence tier can match candidates whose first character
// differs from the query's, so bucketing would drop valid matches. At the
// intended scale (tens of thousands of rows) a full scan is cheap.
func (s *Store) Candidates(ctx context.Context) ([]Association, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, phrase, video_id, owner_id, created_at FROM associations`,
	)
	if err != nil {
		return nil, storageErr("loading candidates", err)
	}
	defer rows.Close()
	return scanAssociations(rows)
}

func scanAssociations(rows *sql.Rows) ([]Association, error) {
	var result []Association
	for rows.Next() {
		var a Association
		var createdAt string
		if err := rows.Scan(&a.Seq, &a.ID, &a.Phrase, &a.VideoID, &a.OwnerID, &createdAt); err != nil {
			return nil, storageErr("scanning association row", err)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", a.ID, err)
		}
		a.CreatedAt = t
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating association rows", err)
	}
	return result, nil
}
