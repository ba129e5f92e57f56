// Package search ranks list items against a free text query with fuzzy
// matching, the way the dashboard search boxes behave.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MaxCandidates caps how many rows a list endpoint loads for in-memory
// ranking when a query is present.
const MaxCandidates = 1000

// FieldsFunc returns the searchable text of an item.
type FieldsFunc[T any] func(item T) []string

type ranked[T any] struct {
	item  T
	score int
	index int
}

// Filter keeps the items where every word of q fuzzily matches one of the
// item's fields, best matches first. Ties keep the input order. An empty
// query returns items unchanged.
func Filter[T any](q string, items []T, fields FieldsFunc[T]) []T {
	words := strings.Fields(q)
	if len(words) == 0 {
		return items
	}

	matches := make([]ranked[T], 0, len(items))
	for i, item := range items {
		score, ok := Score(words, fields(item))
		if !ok {
			continue
		}
		matches = append(matches, ranked[T]{item: item, score: score, index: i})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].score < matches[b].score
	})

	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out
}

// Score sums, for each word, the smallest Levenshtein distance among the
// fields it fuzzily matches. ok is false when a word matches nothing.
func Score(words []string, fields []string) (int, bool) {
	total := 0
	for _, w := range words {
		best := -1
		for _, f := range fields {
			if f == "" {
				continue
			}
			d := fuzzy.RankMatchNormalizedFold(w, f)
			if d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best < 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

// Window returns items[offset:offset+limit], clamped to the slice.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
