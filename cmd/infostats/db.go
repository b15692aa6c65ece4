package main

import (
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite records database",
	Long: `The JSONL records file is the source of truth; the SQLite database is a
query copy rebuilt from it with 'infostats db load'.`,
}

var dbLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Rebuild the database from the records file",
	Args:  cobra.NoArgs,
	RunE:  runDBLoad,
}

var dbCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the records in the database",
	Args:  cobra.NoArgs,
	RunE:  runDBCount,
}

func init() {
	dbCmd.AddCommand(dbLoadCmd, dbCountCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBLoad(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	n, err := db.RebuildFromJSONL(cfg.RecordsPath)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		outputHuman("Loaded %d records into %s\n", n, cfg.DBPath)
		return nil
	}
	return outputJSON(StatusResponse{Status: "loaded", Path: cfg.DBPath, Records: n})
}

func runDBCount(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting records: %v", err)
	}

	if humanOutput {
		outputHuman("%d\n", n)
		return nil
	}
	return outputJSON(StatusResponse{Status: "ok", Path: cfg.DBPath, Records: n})
}
