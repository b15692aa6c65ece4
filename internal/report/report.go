// Package report assembles the statistics over a record collection and
// writes them as semicolon-delimited sections.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matsen/infostats/internal/record"
	"github.com/matsen/infostats/internal/stats"
)

// Options sets the ranking sizes and the year window.
type Options struct {
	Window         int
	Threshold      int
	MostPublishing int
	CountryStats   int
	Keywords       int
}

// DefaultOptions returns the sizes used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Window:         3,
		Threshold:      20,
		MostPublishing: 10,
		CountryStats:   10,
		Keywords:       100,
	}
}

// Report holds every computed section, in output order.
type Report struct {
	ByYear            []stats.GroupCount  `json:"by_year"`
	CitationShare     []stats.YearStat    `json:"citation_share"`
	AvgCitations      []stats.YearStat    `json:"avg_citations"`
	AvgVisualizations []stats.YearStat    `json:"avg_visualizations"`
	CountriesByYear   []stats.GroupCount  `json:"countries_by_year"`
	AboveThreshold    []stats.GroupCount  `json:"above_threshold"`
	MostPublishing    []stats.KeyCount    `json:"most_publishing"`
	CountryStats      []stats.CountryStat `json:"country_stats"`
	Keywords          []stats.KeyCount    `json:"keywords"`
}

// Build computes all sections over recs.
func Build(recs []record.Record, opts Options) (*Report, error) {
	rep := &Report{
		ByYear:            stats.CountByYear(recs),
		CitationShare:     stats.TrailingCitationShare(recs),
		AvgCitations:      stats.AvgCitationsByYear(recs),
		AvgVisualizations: stats.AvgVisualizationsByYear(recs),
		CountriesByYear:   stats.DistinctCountriesByYear(recs),
	}

	var err error
	if rep.AboveThreshold, err = stats.TopCountriesAboveThreshold(recs, opts.Threshold, opts.Window); err != nil {
		return nil, fmt.Errorf("threshold ranking: %w", err)
	}
	if rep.MostPublishing, err = stats.CountriesWithMostPublishing(recs, opts.MostPublishing, opts.Window); err != nil {
		return nil, fmt.Errorf("most publishing: %w", err)
	}
	if rep.CountryStats, err = stats.CountryStats(recs, opts.CountryStats, opts.Window); err != nil {
		return nil, fmt.Errorf("country stats: %w", err)
	}
	if rep.Keywords, err = stats.KeywordFrequency(recs, opts.Keywords, opts.Window); err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}

	return rep, nil
}

// Sections returns the rows of each section, in output order.
func (r *Report) Sections() [][][]string {
	return [][][]string{
		groupRows(r.ByYear),
		yearRows(r.CitationShare),
		yearRows(r.AvgCitations),
		yearRows(r.AvgVisualizations),
		groupRows(r.CountriesByYear),
		groupRows(r.AboveThreshold),
		keyRows(r.MostPublishing),
		countryRows(r.CountryStats),
		keyRows(r.Keywords),
	}
}

// Write writes the sections separated by a blank line.
func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = ';'

	for i, rows := range r.Sections() {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("writing section %d: %w", i+1, err)
		}
	}

	return bw.Flush()
}

// WriteFile writes the report to path, replacing any existing file.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := r.Write(f); err != nil {
		return err
	}
	return f.Close()
}

func groupRows(gs []stats.GroupCount) [][]string {
	rows := make([][]string, len(gs))
	for i, g := range gs {
		rows[i] = []string{g.Grouping, strconv.Itoa(g.Count)}
	}
	return rows
}

func keyRows(ks []stats.KeyCount) [][]string {
	rows := make([][]string, len(ks))
	for i, k := range ks {
		rows[i] = []string{k.Key, strconv.Itoa(k.Count)}
	}
	return rows
}

func yearRows(ys []stats.YearStat) [][]string {
	rows := make([][]string, len(ys))
	for i, y := range ys {
		rows[i] = []string{y.Year, formatFloat(y.Avg), formatFloat(y.StdDev)}
	}
	return rows
}

// countryRows keeps the column order country;avg;stddev;var;highest;lowest;
// medianPoint;mean;mode.
func countryRows(cs []stats.CountryStat) [][]string {
	rows := make([][]string, len(cs))
	for i, c := range cs {
		rows[i] = []string{
			c.Country,
			formatFloat(c.Avg),
			formatFloat(c.StdDev),
			formatFloat(c.Var),
			formatFloat(c.HighestValue),
			formatFloat(c.LowestValue),
			formatFloat(c.MedianPoint),
			formatFloat(c.Mean),
			strconv.Itoa(c.Mode),
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
