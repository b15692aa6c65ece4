package stats

import (
	"math"
	"slices"

	"github.com/matsen/infostats/internal/record"
)

// thresholdEpsilon pushes counts that sit exactly on the threshold over it.
const thresholdEpsilon = 0.00001

// countByCountry counts publications per country in first-seen order.
func countByCountry(recs []record.Record) *tally[string] {
	counts := newTally[string]()
	for _, r := range recs {
		counts.add(r.Country, 1)
	}
	return counts
}

// TopCountriesAboveThreshold ranks countries by how many multiples of
// (mean + stddev) of the per-country publication counts they reach within
// the window most recent years.
//
// Each country gets floor(count / threshold) steps, plus one when count is
// an exact multiple of the threshold. Countries with no steps are dropped;
// the rest are sorted by steps, descending.
func TopCountriesAboveThreshold(recs []record.Record, limit, window int) ([]GroupCount, error) {
	working, err := checkArgs(recs, limit, window)
	if err != nil {
		return nil, err
	}
	if limit == 0 || len(working) == 0 {
		return []GroupCount{}, nil
	}

	counts := countByCountry(working)
	perCountry := counts.values()

	mean := float64(len(working)) / float64(counts.len())
	stddev := math.Sqrt(varianceAround(perCountry, mean))
	threshold := mean + stddev + thresholdEpsilon

	out := make([]GroupCount, 0, counts.len())
	for _, country := range counts.keys {
		steps := thresholdSteps(float64(counts.counts[country]), threshold)
		if steps > 0 {
			out = append(out, GroupCount{Grouping: country, Count: steps})
		}
	}

	slices.SortStableFunc(out, func(a, b GroupCount) int { return b.Count - a.Count })
	return truncate(out, limit), nil
}

// CountriesWithMostPublishing ranks countries by publication count within the
// window most recent years.
func CountriesWithMostPublishing(recs []record.Record, limit, window int) ([]KeyCount, error) {
	working, err := checkArgs(recs, limit, window)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return []KeyCount{}, nil
	}

	counts := countByCountry(working)
	out := make([]KeyCount, 0, counts.len())
	for _, country := range counts.keys {
		out = append(out, KeyCount{Key: country, Count: counts.counts[country]})
	}

	slices.SortStableFunc(out, func(a, b KeyCount) int { return b.Count - a.Count })
	return truncate(out, limit), nil
}

// CountryStats summarizes each country's per-year publication counts within
// the window most recent years and returns the countries with the highest
// median per-year count (CountryStat.Mean).
func CountryStats(recs []record.Record, limit, window int) ([]CountryStat, error) {
	working, err := checkArgs(recs, limit, window)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return []CountryStat{}, nil
	}

	// Per country, per year publication counts, both in first-seen order.
	totals := countByCountry(working)
	perYear := make(map[string]*tally[string], totals.len())
	for _, r := range working {
		years, ok := perYear[r.Country]
		if !ok {
			years = newTally[string]()
			perYear[r.Country] = years
		}
		years.add(r.Year, 1)
	}

	out := make([]CountryStat, 0, totals.len())
	for _, country := range totals.keys {
		years := perYear[country]
		counts := years.values()

		avg := float64(totals.counts[country]) / float64(years.len())
		variance := varianceAround(counts, avg)
		highest, lowest := slices.Max(counts), slices.Min(counts)

		out = append(out, CountryStat{
			Country:      country,
			Avg:          avg,
			Var:          variance,
			StdDev:       math.Sqrt(variance),
			Mean:         Median(counts),
			HighestValue: float64(highest),
			LowestValue:  float64(lowest),
			Mode:         Mode(counts),
			MedianPoint:  float64(highest+lowest) / 2.0,
		})
	}

	slices.SortStableFunc(out, func(a, b CountryStat) int {
		switch {
		case a.Mean > b.Mean:
			return -1
		case a.Mean < b.Mean:
			return 1
		}
		return 0
	})
	return truncate(out, limit), nil
}

// thresholdSteps counts how many whole thresholds fit in count. An exact
// multiple counts one step more.
func thresholdSteps(count, threshold float64) int {
	steps := int(math.Floor(count / threshold))
	if math.Mod(count, threshold) == 0 {
		steps++
	}
	return steps
}
