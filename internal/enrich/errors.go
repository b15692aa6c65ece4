package enrich

import (
	"errors"
	"fmt"
)

// Common errors returned while enriching records.
var (
	// ErrEmptyID indicates a record without an identifier to look up.
	ErrEmptyID = errors.New("record has no id")

	// ErrNotFound indicates the page does not exist.
	ErrNotFound = errors.New("page not found")

	// ErrRateLimited indicates the publisher is throttling requests.
	ErrRateLimited = errors.New("publisher rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error fetching page")

	// ErrInvalidHTML indicates the page could not be parsed.
	ErrInvalidHTML = errors.New("invalid HTML page")
)

// FetchError reports a non-success HTTP status for a page.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound returns true if the error indicates a missing page.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == 404
	}
	return false
}
