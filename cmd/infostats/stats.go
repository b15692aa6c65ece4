package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/infostats/internal/record"
	"github.com/matsen/infostats/internal/stats"
)

var (
	statsFrom   string
	statsLimit  int
	statsWindow int
)

// statKinds maps each stats subcommand argument to its computation. Limit
// and window are ignored by the per-year statistics.
var statKinds = map[string]func(recs []record.Record, limit, window int) (any, error){
	"by-year": func(recs []record.Record, _, _ int) (any, error) {
		return stats.CountByYear(recs), nil
	},
	"countries-by-year": func(recs []record.Record, _, _ int) (any, error) {
		return stats.DistinctCountriesByYear(recs), nil
	},
	"citation-share": func(recs []record.Record, _, _ int) (any, error) {
		return stats.TrailingCitationShare(recs), nil
	},
	"avg-citations": func(recs []record.Record, _, _ int) (any, error) {
		return stats.AvgCitationsByYear(recs), nil
	},
	"avg-visualizations": func(recs []record.Record, _, _ int) (any, error) {
		return stats.AvgVisualizationsByYear(recs), nil
	},
	"threshold": func(recs []record.Record, limit, window int) (any, error) {
		return stats.TopCountriesAboveThreshold(recs, limit, window)
	},
	"most-publishing": func(recs []record.Record, limit, window int) (any, error) {
		return stats.CountriesWithMostPublishing(recs, limit, window)
	},
	"country-stats": func(recs []record.Record, limit, window int) (any, error) {
		return stats.CountryStats(recs, limit, window)
	},
	"keywords": func(recs []record.Record, limit, window int) (any, error) {
		return stats.KeywordFrequency(recs, limit, window)
	},
}

// statLimit returns the configured default limit for each ranking.
func statLimit(kind string) int {
	switch kind {
	case "threshold":
		return cfg.Limits.Threshold
	case "most-publishing":
		return cfg.Limits.MostPublishing
	case "country-stats":
		return cfg.Limits.CountryStats
	case "keywords":
		return cfg.Limits.Keywords
	}
	return 0
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", sourceJSONL, "Record source: jsonl or db")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 0, "Maximum entries in a ranking (default from config)")
	statsCmd.Flags().IntVar(&statsWindow, "window", 0, "Most recent years considered by rankings (default from config)")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <kind>",
	Short: "Print a single statistic",
	Long: `Print a single statistic over the records.

Kinds:
  by-year             records per year
  countries-by-year   distinct countries per year
  citation-share      citations relative to the three preceding years
  avg-citations       mean and stddev of citations per year
  avg-visualizations  mean and stddev of views per year
  threshold           countries by steps above mean + stddev
  most-publishing     countries by publication count
  country-stats       per-country yearly publication statistics
  keywords            keyword frequency

Examples:
  infostats stats by-year
  infostats stats keywords --limit 20 --window 2 --human`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"by-year", "countries-by-year", "citation-share", "avg-citations", "avg-visualizations", "threshold", "most-publishing", "country-stats", "keywords"},
	RunE:      runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	kind := args[0]
	compute, ok := statKinds[kind]
	if !ok {
		exitWithError(ExitError, "unknown statistic %q", kind)
	}

	limit := statLimit(kind)
	if cmd.Flags().Changed("limit") {
		limit = statsLimit
	}
	window := cfg.YearWindow
	if cmd.Flags().Changed("window") {
		window = statsWindow
	}

	recs := mustLoadRecords(statsFrom)
	result, err := compute(recs, limit, window)
	if err != nil {
		exitWithError(ExitError, "computing %s: %v", kind, err)
	}

	if humanOutput {
		printStatHuman(result)
		return nil
	}
	return outputJSON(result)
}

// printStatHuman prints one row per entry, columns separated by tabs.
func printStatHuman(result any) {
	var rows [][]string
	switch v := result.(type) {
	case []stats.GroupCount:
		for _, g := range v {
			rows = append(rows, []string{g.Grouping, fmt.Sprint(g.Count)})
		}
	case []stats.KeyCount:
		for _, k := range v {
			rows = append(rows, []string{k.Key, fmt.Sprint(k.Count)})
		}
	case []stats.YearStat:
		for _, y := range v {
			rows = append(rows, []string{y.Year, fmt.Sprintf("%.4f", y.Avg), fmt.Sprintf("%.4f", y.StdDev)})
		}
	case []stats.CountryStat:
		outputHuman("country\tavg\tstddev\tvar\thighest\tlowest\tmedian_point\tmean\tmode\n")
		for _, c := range v {
			rows = append(rows, []string{
				c.Country,
				fmt.Sprintf("%.2f", c.Avg),
				fmt.Sprintf("%.2f", c.StdDev),
				fmt.Sprintf("%.2f", c.Var),
				fmt.Sprint(c.HighestValue),
				fmt.Sprint(c.LowestValue),
				fmt.Sprint(c.MedianPoint),
				fmt.Sprint(c.Mean),
				fmt.Sprint(c.Mode),
			})
		}
	}

	if len(rows) == 0 {
		outputHuman("No results\n")
		return
	}
	for _, row := range rows {
		outputHuman("%s\n", strings.Join(row, "\t"))
	}
}
