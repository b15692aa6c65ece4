package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/infostats/internal/export"
	"github.com/matsen/infostats/internal/record"
	"github.com/matsen/infostats/internal/storage"
)

var (
	exportFrom   string
	exportKeys   string
	exportAppend string
)

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", sourceJSONL, "Record source: jsonl or db")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified IDs (comma-separated)")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append to this .bib file, skipping entries it already has")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records to BibTeX format",
	Long: `Export records to BibTeX format. The output parses back to the same
records with 'infostats parse'.

Examples:
  infostats export > refs.bib
  infostats export --keys 7000001,7000002
  infostats export --from db --append refs.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	recs := mustLoadRecords(exportFrom)

	if exportKeys != "" {
		recs = selectKeys(recs, strings.Split(exportKeys, ","))
	}

	if exportAppend == "" {
		// BibTeX is always text output, never JSON
		fmt.Print(export.ToBibTeXList(recs))
		return nil
	}

	idx, err := export.LoadIndex(exportAppend)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", exportAppend, err)
	}
	missing := idx.Missing(recs)
	if len(missing) > 0 {
		if err := export.AppendToBibFile(exportAppend, export.ToBibTeXList(missing)); err != nil {
			exitWithError(ExitError, "appending to %s: %v", exportAppend, err)
		}
	}

	if humanOutput {
		outputHuman("Appended %d records to %s (%d already present)\n", len(missing), exportAppend, len(recs)-len(missing))
		return nil
	}
	return outputJSON(StatusResponse{Status: "appended", Path: exportAppend, Records: len(missing)})
}

// selectKeys returns the records with the given IDs in key order, exits on
// an unknown key.
func selectKeys(recs []record.Record, keys []string) []record.Record {
	var out []record.Record
	for _, key := range keys {
		key = strings.TrimSpace(key)
		i, found := storage.FindByID(recs, key)
		if !found {
			exitWithError(ExitError, "unknown key: %s", key)
		}
		out = append(out, recs[i])
	}
	return out
}
