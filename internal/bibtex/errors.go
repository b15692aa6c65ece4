package bibtex

import (
	"errors"
	"fmt"
)

// Errors returned by the parser.
var (
	// ErrMalformedFieldLine indicates a field line that does not split into
	// two non-empty parts on the first '='. It aborts the whole parse.
	ErrMalformedFieldLine = errors.New("malformed field line")

	// ErrUnterminatedEntry indicates the input ended inside an entry.
	ErrUnterminatedEntry = errors.New("input ended before entry braces balanced")

	// ErrInvalidArgument indicates a negative block size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyOpen is returned by Open on a parser that is already open.
	ErrAlreadyOpen = errors.New("parser is already open")

	// ErrNotOpen is returned when reading from a parser that was never opened.
	ErrNotOpen = errors.New("parser is not open")

	// ErrClosed is returned when using a parser after Close.
	ErrClosed = errors.New("parser is closed")
)

// SyntaxError locates a fatal parse error in the input.
type SyntaxError struct {
	Line int    // 1-based line number
	Text string // Offending line, without the line terminator
	Err  error  // ErrMalformedFieldLine or ErrUnterminatedEntry
}

func (e *SyntaxError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
