// Package main provides the infostats CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/infostats/internal/config"
	"github.com/matsen/infostats/internal/record"
	"github.com/matsen/infostats/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	configPath  string

	// Set by the root command before any subcommand runs.
	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	defer func() { _ = logger.Sync() }()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "infostats",
	Short: "Publication statistics from BibTeX exports",
	Long: `infostats parses IEEE-style BibTeX exports, enriches the records from
the publisher's article pages, and computes statistics over them.

Typical workflow:
  infostats parse references.bib   # BibTeX -> records.jsonl
  infostats enrich                 # add country, citations, venue metrics
  infostats db load                # records.jsonl -> SQLite
  infostats report --from db       # write the semicolon-delimited report

Settings are read from infostats.yml (or --config). All commands output
JSON by default; use --human for human-readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress and debug information to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ./infostats.yml)")
	rootCmd.Version = Version
}

// setup loads .env, builds the logger and resolves the configuration.
func setup(cmd *cobra.Command, args []string) error {
	// Load .env file if present (for INFOSTATS_CONFIG / INFOSTATS_DB)
	_ = godotenv.Load()

	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger = l

	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	path := config.FindConfig(configPath, cwd)
	if configPath != "" || os.Getenv(config.EnvConfig) != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg.ApplyEnv()

	logger.Debug("configuration loaded", zap.String("path", path))
	return nil
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase() *storage.DB {
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadRecords reads the record collection from the JSONL file or the
// database, exits on error.
func mustLoadRecords(from string) []record.Record {
	switch from {
	case sourceJSONL:
		recs, err := storage.ReadAll(cfg.RecordsPath)
		if err != nil {
			exitWithError(ExitDataError, "reading records: %v", err)
		}
		return recs
	case sourceDB:
		db := mustOpenDatabase()
		defer db.Close()
		recs, err := db.All()
		if err != nil {
			exitWithError(ExitDataError, "reading records from database: %v", err)
		}
		return recs
	}
	exitWithError(ExitError, "unknown source %q (want %s or %s)", from, sourceJSONL, sourceDB)
	return nil
}

// Record sources accepted by --from.
const (
	sourceJSONL = "jsonl"
	sourceDB    = "db"
)
