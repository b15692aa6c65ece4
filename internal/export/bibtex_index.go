package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/infostats/internal/record"
)

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Match DOI field: doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// Index records the entries of an existing .bib file so that appends do
// not duplicate them.
type Index struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// Has reports whether r is already indexed. DOI is the primary match; the
// record ID is the fallback if there is no DOI.
func (idx *Index) Has(r record.Record) bool {
	if r.DOI != "" {
		if _, exists := idx.DOIs[normalizeDOI(r.DOI)]; exists {
			return true
		}
	}
	return idx.Keys[r.ID]
}

// Add indexes r.
func (idx *Index) Add(r record.Record) {
	idx.Keys[r.ID] = true
	if doi := normalizeDOI(r.DOI); doi != "" {
		idx.DOIs[doi] = r.ID
	}
}

// Missing returns the records of recs not yet indexed, in order, indexing
// them as it goes so duplicates within recs are dropped too.
func (idx *Index) Missing(recs []record.Record) []record.Record {
	var out []record.Record
	for _, r := range recs {
		if idx.Has(r) {
			continue
		}
		idx.Add(r)
		out = append(out, r)
	}
	return out
}

// LoadIndex builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func LoadIndex(path string) (*Index, error) {
	idx := NewIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			doi := normalizeDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.ToLower(doi)
}

// AppendToBibFile appends BibTeX content to a file, creating it if needed.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	if _, err := file.WriteString("\n" + content); err != nil {
		return err
	}
	return file.Close()
}
