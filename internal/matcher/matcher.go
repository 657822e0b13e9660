// Package matcher ranks stored phrases against a free-text query. It is pure:
// candidates go in, a bounded ordered result comes out, nothing is mutated.
package matcher

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/clipdex/internal/phrase"
)

// DefaultLimit bounds a search result when the caller passes limit <= 0.
const DefaultLimit = 10

// Candidate sets at or above this size are scored on a bounded worker group.
// Below it the sequential scan is faster than the goroutine overhead.
const shardThreshold = 2048

const scoreConcurrency = 4

// Tier is the coarse ranking bucket a match falls into. Higher wins.
type Tier int

const (
	TierNone Tier = iota
	TierSubsequence
	TierPrefix
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierSubsequence:
		return "subsequence"
	default:
		return "none"
	}
}

// Candidate is a stored phrase under consideration. Phrase must already be
// normalized; Seq and CreatedAt drive the deterministic tie-breaks.
type Candidate struct {
	Seq       int64
	Phrase    string
	VideoID   string
	OwnerID   int64
	CreatedAt time.Time
}

// MatchResult pairs a video reference with its originating phrase and score.
// Associations sharing a phrase each produce their own result.
type MatchResult struct {
	Candidate
	Tier  Tier
	Score float64
}

// Rank scores every candidate against the query and returns the top matches
// ordered by tier, then tier score, then recency, then creation sequence.
// An empty query (after normalization) returns nothing rather than everything.
func Rank(query string, candidates []Candidate, limit int) []MatchResult {
	q := phrase.Normalize(query)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	scored := make([]MatchResult, len(candidates))
	if len(candidates) >= shardThreshold {
		rankConcurrent(q, candidates, scored)
	} else {
		for i, c := range candidates {
			scored[i] = scoreCandidate(q, c)
		}
	}

	matches := scored[:0]
	for _, m := range scored {
		if m.Tier != TierNone {
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Tier != b.Tier {
			return a.Tier > b.Tier
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq < b.Seq
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// rankConcurrent splits the candidate slice into contiguous shards and scores
// them on a bounded group. Each shard writes into its own region of out, so
// ordering stays deterministic: the final ranking sorts after the scan.
func rankConcurrent(q string, candidates []Candidate, out []MatchResult) {
	var g errgroup.Group
	g.SetLimit(scoreConcurrency)

	shardSize := (len(candidates) + scoreConcurrency - 1) / scoreConcurrency
	for start := 0; start < len(candidates); start += shardSize {
		end := start + shardSize
		if end > len(candidates) {
			end = len(candidates)
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = scoreCandidate(q, candidates[i])
			}
			return nil
		})
	}
	g.Wait() // scoring cannot fail
}

// scoreCandidate assigns a tier and an in-tier score, both on a "higher is
// better" scale:
//
//	exact:       1.0
//	prefix:      len(query)/len(phrase) — tighter phrases rank first
//	subsequence: len(query)/span — compact matched spans rank first
func scoreCandidate(q string, c Candidate) MatchResult {
	m := MatchResult{Candidate: c}
	p := c.Phrase
	switch {
	case p == q:
		m.Tier, m.Score = TierExact, 1
	case strings.HasPrefix(p, q):
		m.Tier, m.Score = TierPrefix, float64(len(q))/float64(len(p))
	default:
		if span, ok := subsequenceSpan([]rune(q), []rune(p)); ok {
			qlen := len([]rune(q))
			m.Tier, m.Score = TierSubsequence, float64(qlen)/float64(span)
		}
	}
	return m
}

// subsequenceSpan reports whether query appears in p as an ordered (not
// necessarily contiguous) subsequence and, if so, the length of the tightest
// window containing such a match. A contiguous substring hit yields
// span == len(query), the best possible value.
func subsequenceSpan(query, p []rune) (int, bool) {
	if len(query) == 0 || len(query) > len(p) {
		return 0, false
	}

	best := 0
	found := false
	for start := 0; start+len(query) <= len(p); start++ {
		if p[start] != query[0] {
			continue
		}
		// Greedy forward match from this start gives the earliest possible
		// end, so end-start+1 is the minimal span anchored here.
		qi := 0
		end := -1
		for i := start; i < len(p); i++ {
			if p[i] == query[qi] {
				qi++
				if qi == len(query) {
					end = i
					break
				}
			}
		}
		if end < 0 {
			break // no later start can complete either
		}
		span := end - start + 1
		if !found || span < best {
			best = span
			found = true
		}
		if span == len(query) {
			break // contiguous, cannot improve
		}
	}
	return best, found
}
