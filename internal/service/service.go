// Package service is the typed operation surface of the core. Transport
// layers hand it resolved caller identities and already-parsed arguments;
// it runs the authorization gate, touches the store, and for searches ranks
// candidates through the matcher. No raw command text reaches this layer.
package service

import (
	"context"
	"log/slog"

	"github.com/kalambet/clipdex/internal/auth"
	"github.com/kalambet/clipdex/internal/matcher"
	"github.com/kalambet/clipdex/internal/store"
	"github.com/kalambet/clipdex/internal/view"
)

type Service struct {
	store *store.Store
	gate  *auth.Gate
	view  *view.View
}

func New(st *store.Store, gate *auth.Gate) *Service {
	return &Service{
		store: st,
		gate:  gate,
		view:  view.New(st),
	}
}

// Remember teaches a phrase→video association. Owner-only.
func (s *Service) Remember(ctx context.Context, callerID int64, phrase, videoID string) (store.Association, error) {
	if err := s.gate.RequireOwner(ctx, callerID); err != nil {
		return store.Association{}, err
	}
	a, err := s.store.Remember(ctx, phrase, videoID, callerID)
	if err != nil {
		return store.Association{}, err
	}
	slog.Info("association remembered", "phrase", a.Phrase, "video", a.VideoID, "owner", a.OwnerID)
	return a, nil
}

// Delete removes the caller's associations for a phrase. Owner-only; rows
// taught by other owners under the same phrase stay untouched.
func (s *Service) Delete(ctx context.Context, callerID int64, phrase string) (int, error) {
	if err := s.gate.RequireOwner(ctx, callerID); err != nil {
		return 0, err
	}
	n, err := s.store.Delete(ctx, phrase, callerID)
	if err != nil {
		return 0, err
	}
	slog.Info("associations deleted", "phrase", phrase, "owner", callerID, "count", n)
	return n, nil
}

// Search ranks stored phrases against a free-text query. Open to any caller.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]matcher.MatchResult, error) {
	rows, err := s.store.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]matcher.Candidate, len(rows))
	for i, a := range rows {
		candidates[i] = matcher.Candidate{
			Seq:       a.Seq,
			Phrase:    a.Phrase,
			VideoID:   a.VideoID,
			OwnerID:   a.OwnerID,
			CreatedAt: a.CreatedAt,
		}
	}
	return matcher.Rank(query, candidates, limit), nil
}

// AddOwner grants owner rights to newID on behalf of callerID.
func (s *Service) AddOwner(ctx context.Context, callerID, newID int64) error {
	if err := s.gate.AddOwner(ctx, newID, callerID); err != nil {
		return err
	}
	slog.Info("owner added", "owner", newID, "by", callerID)
	return nil
}

// Status returns one page of the owner-attributed listing. Owner-only.
func (s *Service) Status(ctx context.Context, callerID int64, pageNumber int) (view.Page, error) {
	if err := s.gate.RequireOwner(ctx, callerID); err != nil {
		return view.Page{}, err
	}
	return s.view.Page(ctx, pageNumber, view.DefaultPageSize)
}
