package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/infostats/internal/bibtex"
	"github.com/matsen/infostats/internal/enrich"
	"github.com/matsen/infostats/internal/storage"
)

var (
	parseBlockSize int
	parseEnrich    bool
)

func init() {
	parseCmd.Flags().IntVar(&parseBlockSize, "block-size", -1, "Entries per block (default from config, 0 = all at once)")
	parseCmd.Flags().BoolVar(&parseEnrich, "enrich", false, "Enrich each block from the publisher's pages before saving")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a BibTeX export into the records file",
	Long: `Parse a BibTeX export into the JSONL records file.

The file is read in blocks of block_size entries and each block is appended
to records_path. With delete_previous set, records_path is removed first.
A malformed entry aborts the run; blocks already saved are kept.

Examples:
  infostats parse
  infostats parse export.bib --block-size 500
  infostats parse export.bib --enrich`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	Status   string          `json:"status"`
	Path     string          `json:"path"`
	Records  int             `json:"records"`
	Blocks   int             `json:"blocks"`
	Enriched *enrich.Summary `json:"enriched,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	input := cfg.BibtexPath
	if len(args) == 1 {
		input = args[0]
	}
	blockSize := cfg.BlockSize
	if parseBlockSize >= 0 {
		blockSize = parseBlockSize
	}

	if cfg.DeletePrevious {
		if err := os.Remove(cfg.RecordsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitError, "removing previous records: %v", err)
		}
	}

	var enricher *enrich.Enricher
	if parseEnrich {
		enricher = mustNewEnricher()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := bibtex.NewParser(input)
	if err := p.Open(); err != nil {
		exitWithError(ExitDataError, "opening %s: %v", p.Path(), err)
	}
	defer p.Close()

	result := ParseResult{Status: "parsed", Path: cfg.RecordsPath}
	var summary enrich.Summary
	for p.HasNext() {
		block, err := p.ReadBlock(blockSize)
		if err != nil {
			exitWithError(ExitDataError, "parsing %s: %v", p.Path(), err)
		}
		if len(block) == 0 {
			break
		}

		if enricher != nil {
			s, err := enricher.Run(ctx, block)
			summary.Total += s.Total
			summary.Enriched += s.Enriched
			summary.Failed += s.Failed
			if err != nil {
				exitWithError(ExitError, "enrichment interrupted: %v", err)
			}
		}

		if err := storage.Append(cfg.RecordsPath, block...); err != nil {
			exitWithError(ExitError, "saving records: %v", err)
		}
		result.Records += len(block)
		result.Blocks++
		logger.Info("block saved", zap.Int("block", result.Blocks), zap.Int("records", result.Records))
	}

	if enricher != nil {
		result.Enriched = &summary
	}

	if humanOutput {
		outputHuman("Parsed %d records in %d blocks into %s\n", result.Records, result.Blocks, result.Path)
		if result.Enriched != nil {
			outputHuman("Enriched %d, failed %d\n", summary.Enriched, summary.Failed)
		}
		return nil
	}
	return outputJSON(result)
}
