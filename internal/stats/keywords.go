package stats

import (
	"slices"

	"github.com/matsen/infostats/internal/record"
	"golang.org/x/text/cases"
)

// KeywordFrequency counts keywords case-insensitively within the window most
// recent years. Each keyword is reported with the spelling it was first seen
// with; results are sorted by count, descending.
func KeywordFrequency(recs []record.Record, limit, window int) ([]KeyCount, error) {
	working, err := checkArgs(recs, limit, window)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return []KeyCount{}, nil
	}

	fold := cases.Fold()
	counts := newTally[string]()
	spelling := make(map[string]string)
	for _, r := range working {
		for _, kw := range r.KeywordList() {
			key := fold.String(kw)
			if _, ok := spelling[key]; !ok {
				spelling[key] = kw
			}
			counts.add(key, 1)
		}
	}

	out := make([]KeyCount, 0, counts.len())
	for _, key := range counts.keys {
		out = append(out, KeyCount{Key: spelling[key], Count: counts.counts[key]})
	}

	slices.SortStableFunc(out, func(a, b KeyCount) int { return b.Count - a.Count })
	return truncate(out, limit), nil
}
