package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matsen/infostats/internal/enrich"
	"github.com/matsen/infostats/internal/storage"
)

func init() {
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add country, citation and venue data to the records",
	Long: `Fetch each record's article page and its venue page from the publisher
and fill in country, citation count, views, venue id, impact factor,
eigenfactor and article influence score.

Records that fail are logged and kept unchanged. The records file is
rewritten in place, also when the run is interrupted.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

// EnrichResult is the response for the enrich command.
type EnrichResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	enrich.Summary
}

func runEnrich(cmd *cobra.Command, args []string) error {
	recs := mustLoadRecords(sourceJSONL)
	enricher := mustNewEnricher()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, runErr := enricher.Run(ctx, recs)

	if err := storage.WriteAll(cfg.RecordsPath, recs); err != nil {
		exitWithError(ExitError, "saving records: %v", err)
	}
	if runErr != nil {
		exitWithError(ExitError, "enrichment interrupted after %d of %d records: %v",
			summary.Enriched+summary.Failed, summary.Total, runErr)
	}
	if summary.Total > 0 && summary.Enriched == 0 {
		exitWithError(ExitNetworkError, "no record could be enriched (%d failed)", summary.Failed)
	}

	if humanOutput {
		outputHuman("Enriched %d of %d records (%d failed)\n", summary.Enriched, summary.Total, summary.Failed)
		return nil
	}
	return outputJSON(EnrichResult{Status: "enriched", Path: cfg.RecordsPath, Summary: summary})
}

// mustNewEnricher builds an Enricher from the enrich config, exits on error.
func mustNewEnricher() *enrich.Enricher {
	ec := cfg.Enrich
	fetcher := enrich.NewHTTPFetcher(
		enrich.WithTimeout(ec.Timeout),
		enrich.WithRateLimit(ec.RateLimit),
		enrich.WithUserAgent(ec.UserAgent),
	)

	e, err := enrich.New(fetcher, enrich.Options{
		ArticleURL:  ec.ArticleURL,
		VenueURL:    ec.VenueURL,
		Concurrency: ec.Concurrency,
		CacheSize:   ec.CacheSize,
	}, logger)
	if err != nil {
		exitWithError(ExitConfigError, "creating enricher: %v", err)
	}
	return e
}
