// Package auth decides which caller identities may mutate the association
// store. The owner allow-list lives behind the Directory interface so the
// gate never owns the set itself.
package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAuthorized is returned when a non-owner attempts a mutating operation.
var ErrNotAuthorized = errors.New("not authorized")

// Directory is the owner allow-list the gate consults. The store implements it.
type Directory interface {
	IsOwner(ctx context.Context, userID int64) (bool, error)
	AddOwner(ctx context.Context, userID int64) error
}

// Gate answers authorization questions for mutating operations. Search never
// goes through the gate — it is open to any caller.
type Gate struct {
	dir Directory
}

func NewGate(dir Directory) *Gate {
	return &Gate{dir: dir}
}

// IsOwner reports whether userID may mutate the store.
func (g *Gate) IsOwner(ctx context.Context, userID int64) (bool, error) {
	return g.dir.IsOwner(ctx, userID)
}

// RequireOwner returns ErrNotAuthorized unless userID is an owner.
func (g *Gate) RequireOwner(ctx context.Context, userID int64) error {
	ok, err := g.dir.IsOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("checking owner %d: %w", userID, err)
	}
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotAuthorized, userID)
	}
	return nil
}

// AddOwner grants owner rights to newID on behalf of requesterID. The
// requester must already be an owner; granting to an existing owner succeeds
// without effect.
func (g *Gate) AddOwner(ctx context.Context, newID, requesterID int64) error {
	if err := g.RequireOwner(ctx, requesterID); err != nil {
		return err
	}
	return g.dir.AddOwner(ctx, newID)
}
