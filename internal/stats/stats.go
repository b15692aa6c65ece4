// Package stats computes descriptive and comparative statistics over records.
//
// Every function is a pure, read-only pass over its input: records are never
// modified, no state survives between calls, and repeated calls with the
// same input return identical output. Grouping follows first-seen order and
// all sorts are stable, so ties resolve the same way on every run.
package stats

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matsen/infostats/internal/record"
)

// ErrInvalidArgument indicates a negative limit or year window.
var ErrInvalidArgument = errors.New("invalid argument")

// GroupCount is a count for one grouping value (a year or a country).
type GroupCount struct {
	Grouping string `json:"grouping"`
	Count    int    `json:"count"`
}

// KeyCount pairs a key (country, keyword) with a count.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// YearStat holds the mean and population standard deviation of a per-record
// measure within one year.
type YearStat struct {
	Year   string  `json:"year"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"stddev"`
}

// CountryStat summarizes a country's per-year publication counts.
type CountryStat struct {
	Country string  `json:"country"`
	Avg     float64 `json:"avg"` // Publications in window / distinct years
	StdDev  float64 `json:"stddev"`
	Var     float64 `json:"var"`
	// Mean holds the median of the per-year counts. The name is kept for
	// compatibility with existing reports.
	Mean         float64 `json:"mean"`
	HighestValue float64 `json:"highest"`
	LowestValue  float64 `json:"lowest"`
	Mode         int     `json:"mode"` // -1 when no per-year count repeats
	MedianPoint  float64 `json:"median_point"`
}

// WindowRecords restricts recs to the window most recent distinct years.
// Years compare as strings. When the data has window or fewer distinct
// years, recs is returned unchanged.
func WindowRecords(recs []record.Record, window int) ([]record.Record, error) {
	if window < 0 {
		return nil, fmt.Errorf("%w: year window %d is negative", ErrInvalidArgument, window)
	}

	years := distinct(recs, yearOf)
	if window >= len(years) {
		return recs, nil
	}

	slices.SortFunc(years, func(a, b string) int { return strings.Compare(b, a) })
	keep := make(map[string]bool, window)
	for _, y := range years[:window] {
		keep[y] = true
	}

	var out []record.Record
	for _, r := range recs {
		if keep[r.Year] {
			out = append(out, r)
		}
	}
	return out, nil
}

// checkArgs validates limit and window and applies the window.
func checkArgs(recs []record.Record, limit, window int) ([]record.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit %d is negative", ErrInvalidArgument, limit)
	}
	return WindowRecords(recs, window)
}

// truncate returns at most limit leading elements of s.
func truncate[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func yearOf(r record.Record) string { return r.Year }

// sortedYears returns the distinct raw years in ascending string order.
func sortedYears(recs []record.Record) []string {
	years := distinct(recs, yearOf)
	slices.SortFunc(years, strings.Compare)
	return years
}
