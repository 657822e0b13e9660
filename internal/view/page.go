// Package view renders stable page-sliced projections of the association
// store for status listings. It is independent of the matcher.
package view

import (
	"context"

	"github.com/kalambet/clipdex/internal/store"
)

// DefaultPageSize is used when the caller passes pageSize <= 0.
const DefaultPageSize = 50

// Lister is the slice of the store the view reads. The store implements it.
type Lister interface {
	ListAll(ctx context.Context, offset, limit int) ([]store.Association, error)
	Count(ctx context.Context) (int, error)
}

// Page is one slice of the full listing. Entries carry phrase, owner and
// creation order so the caller can render who taught what.
type Page struct {
	Entries    []store.Association
	PageNumber int
	TotalPages int
	TotalCount int
}

type View struct {
	lister Lister
}

func New(l Lister) *View {
	return &View{lister: l}
}

// Page returns the 1-indexed pageNumber slice of the listing. A page beyond
// the end yields empty entries with the correct TotalPages, not an error;
// an empty store yields TotalPages == 0.
func (v *View) Page(ctx context.Context, pageNumber, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	total, err := v.lister.Count(ctx)
	if err != nil {
		return Page{}, err
	}

	p := Page{
		PageNumber: pageNumber,
		TotalPages: (total + pageSize - 1) / pageSize,
		TotalCount: total,
	}
	if total == 0 || pageNumber > p.TotalPages {
		return p, nil
	}

	entries, err := v.lister.ListAll(ctx, (pageNumber-1)*pageSize, pageSize)
	if err != nil {
		return Page{}, err
	}
	p.Entries = entries
	return p, nil
}
