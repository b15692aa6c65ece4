package bibtex

import (
	"strings"

	"github.com/matsen/infostats/internal/record"
)

// setter assigns a raw field value to a record.
type setter func(r *record.Record, value string)

// fieldSetters maps lower-case BibTeX field names to record setters.
// Enrichment-only attributes (country, venue id, metrics) are absent on purpose.
var fieldSetters = map[string]setter{
	"author":    func(r *record.Record, v string) { r.Author = v },
	"title":     func(r *record.Record, v string) { r.Title = v },
	"journal":   func(r *record.Record, v string) { r.Journal = v },
	"booktitle": func(r *record.Record, v string) { r.BookTitle = v },
	"year":      (*record.Record).SetYear,
	"pages":     (*record.Record).SetPages,
	"doi":       func(r *record.Record, v string) { r.DOI = v },
	"volume":    func(r *record.Record, v string) { r.Volume = v },
	"number":    func(r *record.Record, v string) { r.Number = v },
	"issn":      func(r *record.Record, v string) { r.ISSN = v },
	"month":     func(r *record.Record, v string) { r.Month = v },
	"keywords":  func(r *record.Record, v string) { r.Keywords = v },
}

// applyField sets the named field on r. Names are matched case-insensitively
// and unknown names are ignored. Reports whether the field was known.
func applyField(r *record.Record, name, value string) bool {
	set, ok := fieldSetters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}
	set(r, value)
	return true
}

