package feed

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// SortKey selects the ordering of a feed when no search term is active.
type SortKey string

// Supported sort keys.
const (
	SortRecent     SortKey = "recent"
	SortOldest     SortKey = "oldest"
	SortMostViewed SortKey = "most_viewed"
	SortTopRated   SortKey = "top_rated"
)

// ParseSortKey maps raw input to a SortKey. Unknown or empty values fall back
// to SortRecent.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortRecent, SortOldest, SortMostViewed, SortTopRated:
		return k
	default:
		return SortRecent
	}
}

// Document is what the composer needs to know about a candidate note.
type Document interface {
	SearchFields() Fields
	// Rating returns the average rating and false when the note has none.
	Rating() (float64, bool)
	Created() time.Time
	Views() int64
}

// NormalizeTerm trims the search term. An empty result means "not searching".
func NormalizeTerm(term string) string {
	return strings.TrimSpace(term)
}

// Compose returns the candidates ordered for display.
//
// With a non-blank term, candidates scoring zero are dropped and the rest are
// ordered by relevance, then average rating, then creation time, all
// descending; the sort key is ignored. Without a term every candidate is kept
// and ordered by sort.
//
// The sort is stable: candidates that compare equal keep their input order.
// For most_viewed and top_rated that means ties follow whatever order the
// store returned.
func Compose[D Document](candidates []D, term string, sort SortKey) []D {
	if t := NormalizeTerm(term); t != "" {
		return search(candidates, t)
	}

	out := slices.Clone(candidates)
	slices.SortStableFunc(out, comparator[D](ParseSortKey(string(sort))))
	return out
}

type scored[D Document] struct {
	doc   D
	score int
}

func search[D Document](candidates []D, term string) []D {
	hits := make([]scored[D], 0, len(candidates))
	for _, d := range candidates {
		if s := Score(term, d.SearchFields()); s > 0 {
			hits = append(hits, scored[D]{doc: d, score: s})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored[D]) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := compareRatingDesc(a.doc, b.doc); c != 0 {
			return c
		}
		return b.doc.Created().Compare(a.doc.Created())
	})

	out := make([]D, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out
}

func comparator[D Document](sort SortKey) func(a, b D) int {
	switch sort {
	case SortOldest:
		return func(a, b D) int { return a.Created().Compare(b.Created()) }
	case SortMostViewed:
		return func(a, b D) int { return cmp.Compare(b.Views(), a.Views()) }
	case SortTopRated:
		return func(a, b D) int { return compareRatingDesc(a, b) }
	default:
		return func(a, b D) int { return b.Created().Compare(a.Created()) }
	}
}

// compareRatingDesc orders higher ratings first; unrated notes sort last.
func compareRatingDesc[D Document](a, b D) int {
	ra, okA := a.Rating()
	rb, okB := b.Rating()
	switch {
	case okA && okB:
		return cmp.Compare(rb, ra)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}
