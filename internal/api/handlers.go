// Package api exposes the core over a local HTTP surface. The chat frontend
// is the intended caller: it resolves platform users to caller ids, parses
// command text, and renders replies — none of that lives here.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/clipdex/internal/matcher"
	"github.com/kalambet/clipdex/internal/service"
	"github.com/kalambet/clipdex/internal/view"
)

const maxRequestBodySize = 1 << 20 // 1MB

type Deps struct {
	Service *service.Service
	Token   string
}

// NewHandler builds the router. Search and health are open; everything that
// can mutate the store (or list who taught what) sits behind the bearer token
// and a resolved caller id.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/search", handleSearch(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/associations", handleRemember(deps))
		r.Delete("/associations", handleDelete(deps))
		r.Get("/status", handleStatus(deps))
		r.Post("/owners", handleAddOwner(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type searchResult struct {
	VideoID   string  `json:"video_id"`
	Phrase    string  `json:"phrase"`
	Tier      string  `json:"tier"`
	Score     float64 `json:"score"`
	OwnerID   int64   `json:"owner_id"`
	CreatedAt string  `json:"created_at"`
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a positive integer")
				return
			}
			limit = n
		}

		matches, err := deps.Service.Search(r.Context(), q, limit)
		if err != nil {
			serviceError(w, err)
			return
		}

		results := make([]searchResult, len(matches))
		for i, m := range matches {
			results[i] = toSearchResult(m)
		}
		writeJSON(w, map[string]any{"query": q, "results": results})
	}
}

func toSearchResult(m matcher.MatchResult) searchResult {
	return searchResult{
		VideoID:   m.VideoID,
		Phrase:    m.Phrase,
		Tier:      m.Tier.String(),
		Score:     m.Score,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type rememberRequest struct {
	Phrase  string `json:"phrase"`
	VideoID string `json:"video_id"`
}

func handleRemember(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(r)
		if !ok {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing or malformed %s header", callerHeader)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req rememberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		a, err := deps.Service.Remember(r.Context(), caller, req.Phrase, req.VideoID)
		if err != nil {
			serviceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":         a.ID,
			"phrase":     a.Phrase,
			"video_id":   a.VideoID,
			"owner_id":   a.OwnerID,
			"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

type deleteRequest struct {
	Phrase string `json:"phrase"`
}

func handleDelete(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(r)
		if !ok {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing or malformed %s header", callerHeader)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req deleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		n, err := deps.Service.Delete(r.Context(), caller, req.Phrase)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"phrase": req.Phrase, "deleted": n})
	}
}

type statusEntry struct {
	Seq       int64  `json:"seq"`
	Phrase    string `json:"phrase"`
	VideoID   string `json:"video_id"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(r)
		if !ok {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing or malformed %s header", callerHeader)
			return
		}

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "page must be a positive integer")
				return
			}
			page = n
		}

		p, err := deps.Service.Status(r.Context(), caller, page)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, toStatusPage(p))
	}
}

func toStatusPage(p view.Page) map[string]any {
	entries := make([]statusEntry, len(p.Entries))
	for i, a := range p.Entries {
		entries[i] = statusEntry{
			Seq:       a.Seq,
			Phrase:    a.Phrase,
			VideoID:   a.VideoID,
			OwnerID:   a.OwnerID,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return map[string]any{
		"entries":     entries,
		"page":        p.PageNumber,
		"total_pages": p.TotalPages,
		"total_count": p.TotalCount,
	}
}

type addOwnerRequest struct {
	UserID int64 `json:"user_id"`
}

func handleAddOwner(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(r)
		if !ok {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing or malformed %s header", callerHeader)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req addOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_id is required")
			return
		}

		if err := deps.Service.AddOwner(r.Context(), caller, req.UserID); err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"user_id": req.UserID, "owner": true})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
