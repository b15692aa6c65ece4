package stats

import (
	"github.com/matsen/infostats/internal/record"
)

// TrailingWindowYears is how many preceding years TrailingCitationShare sums.
const TrailingWindowYears = 3

// CountByYear counts records per raw year, sorted by year string.
func CountByYear(recs []record.Record) []GroupCount {
	counts := newTally[string]()
	for _, r := range recs {
		counts.add(r.Year, 1)
	}

	out := make([]GroupCount, 0, counts.len())
	for _, y := range sortedYears(recs) {
		out = append(out, GroupCount{Grouping: y, Count: counts.counts[y]})
	}
	return out
}

// DistinctCountriesByYear counts distinct countries per raw year, sorted by
// year string.
func DistinctCountriesByYear(recs []record.Record) []GroupCount {
	countries := make(map[string]map[string]struct{})
	for _, r := range recs {
		set, ok := countries[r.Year]
		if !ok {
			set = make(map[string]struct{})
			countries[r.Year] = set
		}
		set[r.Country] = struct{}{}
	}

	years := sortedYears(recs)
	out := make([]GroupCount, 0, len(years))
	for _, y := range years {
		out = append(out, GroupCount{Grouping: y, Count: len(countries[y])})
	}
	return out
}

// TrailingCitationShare relates each record's citations to the citations of
// the three preceding years.
//
// For the i-th year in ascending order (i >= 3) every record of that year
// contributes citations / (sum of citations in years i-1, i-2, i-3); the
// result holds the mean and population standard deviation of those ratios.
// Fewer than four distinct years yield an empty result. When the trailing
// sum is zero the ratios are undefined and reported as 0, so a 0 average can
// mean either uncited records or no citations in the trailing years.
func TrailingCitationShare(recs []record.Record) []YearStat {
	years := sortedYears(recs)
	if len(years) <= TrailingWindowYears {
		return []YearStat{}
	}

	citations := newTally[string]()
	byYear := make(map[string][]record.Record, len(years))
	for _, r := range recs {
		citations.add(r.Year, r.CitationCount)
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	out := make([]YearStat, 0, len(years)-TrailingWindowYears)
	for i := TrailingWindowYears; i < len(years); i++ {
		trailing := 0
		for k := 1; k <= TrailingWindowYears; k++ {
			trailing += citations.counts[years[i-k]]
		}

		yearRecs := byYear[years[i]]
		ratios := make([]float64, len(yearRecs))
		if trailing != 0 {
			for j, r := range yearRecs {
				ratios[j] = float64(r.CitationCount) / float64(trailing)
			}
		}

		out = append(out, YearStat{
			Year:   years[i],
			Avg:    Mean(ratios),
			StdDev: StdDev(ratios),
		})
	}
	return out
}

// AvgCitationsByYear returns the mean and standard deviation of citation
// counts per raw year, sorted by year string.
func AvgCitationsByYear(recs []record.Record) []YearStat {
	return perYearStat(recs, func(r record.Record) int { return r.CitationCount })
}

// AvgVisualizationsByYear returns the mean and standard deviation of
// visualization counts per raw year, sorted by year string.
func AvgVisualizationsByYear(recs []record.Record) []YearStat {
	return perYearStat(recs, func(r record.Record) int { return r.Visualizations })
}

func perYearStat(recs []record.Record, measure func(record.Record) int) []YearStat {
	values := make(map[string][]int)
	for _, r := range recs {
		values[r.Year] = append(values[r.Year], measure(r))
	}

	years := sortedYears(recs)
	out := make([]YearStat, 0, len(years))
	for _, y := range years {
		out = append(out, YearStat{
			Year:   y,
			Avg:    Mean(values[y]),
			StdDev: StdDev(values[y]),
		})
	}
	return out
}
