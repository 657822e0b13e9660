package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_associations_phrase", "idx_associations_phrase_owner"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying sqlite_master for %q: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %q not found in sqlite_master", idx)
		}
	}
}

func TestRememberAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.Remember(ctx, "  Cat Jumping ", "vidA", 100)
	if err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if a.Phrase != "cat jumping" {
		t.Errorf("phrase not normalized: %q", a.Phrase)
	}
	if a.ID == "" || a.Seq == 0 {
		t.Errorf("missing identifiers: id=%q seq=%d", a.ID, a.Seq)
	}

	all, err := s.ListAll(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d rows, want 1", len(all))
	}
	if all[0].VideoID != "vidA" || all[0].OwnerID != 100 {
		t.Errorf("row mismatch: %+v", all[0])
	}
}

func TestRememberInvalidInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Remember(ctx, "   ", "vidA", 100); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty phrase: got %v, want ErrInvalidInput", err)
	}
	if _, err := s.Remember(ctx, "cat", "", 100); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty video: got %v, want ErrInvalidInput", err)
	}
}

// TestRememberIdempotentUpsert covers the re-insert policy: the same owner
// re-teaching the same pair keeps one row and refreshes created_at.
func TestRememberIdempotentUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Remember(ctx, "cat jumping", "vidA", 100)
	if err != nil {
		t.Fatalf("first Remember: %v", err)
	}
	second, err := s.Remember(ctx, "CAT JUMPING", "vidA", 100)
	if err != nil {
		t.Fatalf("second Remember: %v", err)
	}

	if second.Seq != first.Seq || second.ID != first.ID {
		t.Errorf("upsert created a new row: %+v vs %+v", first, second)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Errorf("created_at not refreshed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("row count = %d, want 1", n)
	}
}

func TestRememberDuplicateOtherOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Remember(ctx, "cat jumping", "vidA", 100); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	_, err := s.Remember(ctx, "cat jumping", "vidA", 200)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want ErrDuplicate", err)
	}

	// The same phrase with a different video is fine, whoever teaches it.
	if _, err := s.Remember(ctx, "cat jumping", "vidB", 200); err != nil {
		t.Errorf("distinct video under shared phrase: %v", err)
	}
}

func TestDeleteOwnerScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Remember(ctx, "cat jumping", "vidA", 100); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if _, err := s.Remember(ctx, "cat jumping", "vidB", 200); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	// Owner 300 holds nothing under the phrase: no-op, not an error.
	n, err := s.Delete(ctx, "cat jumping", 300)
	if err != nil {
		t.Fatalf("Delete by non-holder: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d rows, want 0", n)
	}

	// Owner 100 deletes only its own row.
	n, err = s.Delete(ctx, "Cat Jumping", 100)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	remaining, err := s.ListAll(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(remaining) != 1 || remaining[0].OwnerID != 200 {
		t.Errorf("wrong rows remain: %+v", remaining)
	}
}

func TestDeleteUnknownPhrase(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Delete(context.Background(), "never taught", 100)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListAllOrderAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := s.Remember(ctx, fmt.Sprintf("phrase %d", i), fmt.Sprintf("vid%d", i), 100); err != nil {
			t.Fatalf("Remember %d: %v", i, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 7 {
		t.Errorf("Count = %d, want 7", n)
	}

	page, err := s.ListAll(ctx, 2, 3)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("got %d rows, want 3", len(page))
	}
	for i, a := range page {
		if want := fmt.Sprintf("vid%d", i+2); a.VideoID != want {
			t.Errorf("row %d = %s, want %s (seq ascending)", i, a.VideoID, want)
		}
	}
}

func TestCandidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	phrases := []string{"cat jumping", "dog barking", "cat sleeping"}
	for i, p := range phrases {
		if _, err := s.Remember(ctx, p, fmt.Sprintf("vid%d", i), 100); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}

	got, err := s.Candidates(ctx)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	for _, c := range got {
		if c.Phrase == "" || c.VideoID == "" || c.CreatedAt.IsZero() {
			t.Errorf("incomplete candidate: %+v", c)
		}
	}
}

func TestOwners(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SeedOwners(ctx, []int64{1, 2, 2}); err != nil {
		t.Fatalf("SeedOwners: %v", err)
	}
	// Re-seeding must not duplicate or fail.
	if err := s.SeedOwners(ctx, []int64{1, 2}); err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	ok, err := s.IsOwner(ctx, 1)
	if err != nil || !ok {
		t.Errorf("IsOwner(1) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.IsOwner(ctx, 99)
	if err != nil || ok {
		t.Errorf("IsOwner(99) = (%v, %v), want (false, nil)", ok, err)
	}

	if err := s.AddOwner(ctx, 3); err != nil {
		t.Fatalf("AddOwner: %v", err)
	}
	if err := s.AddOwner(ctx, 3); err != nil {
		t.Fatalf("AddOwner idempotent: %v", err)
	}

	owners, err := s.ListOwners(ctx)
	if err != nil {
		t.Fatalf("ListOwners: %v", err)
	}
	if len(owners) != 3 {
		t.Errorf("got %d owners, want 3", len(owners))
	}
	for i, o := range owners {
		if o.UserID != int64(i+1) {
			t.Errorf("owner %d = %d, want %d (ordered by id)", i, o.UserID, i+1)
		}
	}
}

// TestRememberConcurrent exercises the write path from several goroutines:
// same-pair upserts must never produce a second row, and distinct phrases
// must all land.
func TestRememberConcurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done := make(chan error, 16)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := s.Remember(ctx, "cat jumping", "vidA", 100)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		go func(i int) {
			_, err := s.Remember(ctx, fmt.Sprintf("phrase %d", i), fmt.Sprintf("vid%d", i), 100)
			done <- err
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Remember: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 9 {
		t.Errorf("Count = %d, want 9 (1 shared pair + 8 distinct)", n)
	}
}

func TestStorageErrorDistinguishable(t *testing.T) {
	s := openTestStore(t)
	s.Close() // force persistence failures

	_, err := s.Remember(context.Background(), "cat", "vidA", 100)
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want a *StorageError", err)
	}
	if se.Op == "" || se.Err == nil {
		t.Errorf("storage error missing detail: %+v", se)
	}
}
