package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested phrase or association does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a (phrase, video) pair already exists under a
// different owner.
var ErrDuplicate = errors.New("duplicate association")

// ErrInvalidInput is returned for empty phrases or video references.
var ErrInvalidInput = errors.New("invalid input")

// StorageError wraps a persistence failure (I/O, constraint, transaction).
// It is never swallowed: a failed write is always reported to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Association maps a normalized phrase to a stored video reference.
// Seq is the creation order and the stable tie-break key; ID is the external
// identifier.
type Association struct {
	Seq       int64
	ID        string
	Phrase    string
	VideoID   string
	OwnerID   int64
	CreatedAt time.Time
}

// Owner is an allow-listed identity with mutation rights.
type Owner struct {
	UserID  int64
	AddedAt time.Time
}
