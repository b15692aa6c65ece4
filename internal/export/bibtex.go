// Package export writes records back out as BibTeX.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/infostats/internal/record"
)

type field struct {
	name, value string
}

// ToBibTeX converts a record to a BibTeX entry that the bibtex package
// parses back to the same record. One field per line, the entry's closing
// brace ends the last field line.
func ToBibTeX(r record.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType(r), r.ID)

	fields := fieldsOf(r)
	if len(fields) == 0 {
		// An entry needs at least one field line to be closed.
		fields = []field{{"arnumber", r.ID}}
	}
	for i, f := range fields {
		end := ","
		if i == len(fields)-1 {
			end = "}"
		}
		fmt.Fprintf(&b, "  %s = {%s}%s\n", f.name, f.value, end)
	}

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX format.
func ToBibTeXList(recs []record.Record) string {
	var entries []string
	for _, r := range recs {
		entries = append(entries, ToBibTeX(r))
	}
	return strings.Join(entries, "\n")
}

// entryType returns the BibTeX entry type for a record.
func entryType(r record.Record) string {
	switch {
	case r.Journal != "":
		return "article"
	case r.BookTitle != "":
		return "inproceedings"
	}
	return "misc"
}

// fieldsOf lists the non-empty parsed fields of r in export order.
func fieldsOf(r record.Record) []field {
	all := []field{
		{"author", r.Author},
		{"title", r.Title},
		{"journal", r.Journal},
		{"booktitle", r.BookTitle},
		{"year", r.Year},
		{"volume", r.Volume},
		{"number", r.Number},
		{"pages", r.Pages},
		{"keywords", r.Keywords},
		{"doi", r.DOI},
		{"issn", r.ISSN},
		{"month", r.Month},
	}

	var out []field
	for _, f := range all {
		if v := oneLine(f.value); v != "" {
			out = append(out, field{f.name, v})
		}
	}
	return out
}

// oneLine folds line breaks into spaces; field values never span lines.
func oneLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s))
}
