// Package bibtex reads IEEE-style BibTeX exports into records.
//
// The accepted grammar is line oriented:
//
//	@TYPE{identifier,
//	key={value},
//	...
//	key={value},}
//
// An entry starts at a line whose first non-blank character is '@' and ends
// when the running count of '{' minus '}' returns to zero. Any structural
// error aborts the whole parse; there is no per-entry recovery.
package bibtex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/matsen/infostats/internal/record"
)

type parserState int

const (
	stateUnopened parserState = iota
	stateOpen
	stateClosed
)

// Parser streams records out of a BibTeX source in blocks.
// A Parser is not safe for concurrent use.
type Parser struct {
	path   string
	state  parserState
	file   *os.File
	reader *bufio.Reader
	line   int   // number of lines consumed so far
	err    error // first fatal error; sticky
}

// NewParser returns an unopened parser for the file at path.
func NewParser(path string) *Parser {
	return &Parser{path: path}
}

// FromReader returns an open parser reading from r.
// Close does not close r.
func FromReader(r io.Reader) *Parser {
	return &Parser{
		state:  stateOpen,
		reader: bufio.NewReader(r),
	}
}

// Path returns the file path given to NewParser.
func (p *Parser) Path() string {
	return p.path
}

// Open opens the underlying file for reading.
func (p *Parser) Open() error {
	switch p.state {
	case stateOpen:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrClosed
	}

	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("opening bibtex file: %w", err)
	}
	p.file = f
	p.reader = bufio.NewReader(f)
	p.state = stateOpen
	return nil
}

// IsOpen reports whether the parser is open.
func (p *Parser) IsOpen() bool {
	return p.state == stateOpen
}

// HasNext reports whether unread input remains. It is false once a read has
// failed.
func (p *Parser) HasNext() bool {
	if p.state != stateOpen || p.err != nil {
		return false
	}
	_, err := p.reader.Peek(1)
	return err == nil
}

// Close releases the underlying file. Closing twice is a no-op.
func (p *Parser) Close() error {
	if p.state == stateClosed {
		return nil
	}
	p.state = stateClosed
	p.reader = nil
	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// ReadBlock reads up to n records; n == 0 reads until the input is exhausted.
// Fewer than n records are returned when the input runs out. On a parse
// error no records from this call are returned, and every later call
// returns the same error.
func (p *Parser) ReadBlock(n int) ([]record.Record, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: block size %d is negative", ErrInvalidArgument, n)
	}
	switch p.state {
	case stateUnopened:
		return nil, ErrNotOpen
	case stateClosed:
		return nil, ErrClosed
	}
	if p.err != nil {
		return nil, p.err
	}

	if n == 0 {
		n = math.MaxInt
	}

	var block []record.Record
	for len(block) < n && p.HasNext() {
		rec, ok, err := p.next()
		if err != nil {
			p.err = err
			return nil, err
		}
		if !ok {
			break
		}
		block = append(block, rec)
	}
	return block, nil
}

// next reads one entry. It returns ok == false at a clean end of input.
func (p *Parser) next() (record.Record, bool, error) {
	// Skip to the line that starts the next entry.
	var line string
	for {
		text, err := p.readLine()
		if err == io.EOF {
			return record.Record{}, false, nil
		}
		if err != nil {
			return record.Record{}, false, err
		}
		if strings.HasPrefix(strings.TrimLeft(text, " \t"), "@") {
			line = text
			break
		}
	}

	var rec record.Record
	rec.ID = entryID(line)
	balance := braceBalance(line)

	for {
		text, err := p.readLine()
		if err == io.EOF {
			if balance != 0 {
				return record.Record{}, false, &SyntaxError{Line: p.line, Err: ErrUnterminatedEntry}
			}
			return rec, true, nil
		}
		if err != nil {
			return record.Record{}, false, err
		}

		name, value, ok := splitField(text)
		if !ok {
			return record.Record{}, false, &SyntaxError{Line: p.line, Text: text, Err: ErrMalformedFieldLine}
		}
		applyField(&rec, name, value)

		balance += braceBalance(text)
		if balance == 0 {
			return rec, true, nil
		}
	}
}

// readLine returns the next line without its terminator.
// A final line lacking a newline is returned before io.EOF.
func (p *Parser) readLine() (string, error) {
	text, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", err
	}
	p.line++
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return text, nil
}

// entryID extracts the identifier from an '@' line: the text after the first
// '{', with trailing whitespace and commas removed.
func entryID(line string) string {
	trimmed := strings.TrimRight(strings.TrimRightFunc(line, isSpace), ",")
	open := strings.IndexByte(line, '{')
	if open+1 > len(trimmed) {
		return ""
	}
	return strings.TrimSpace(trimmed[open+1:])
}

// splitField splits a "key = {value}," line on its first '='.
func splitField(line string) (name, value string, ok bool) {
	name, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", "", false
	}
	return name, cleanValue(value), true
}

// cleanValue strips the braces that delimit a field value: one leading '{',
// every "}," sequence, and trailing '}' characters left unmatched (the brace
// that closes the entry on its last line).
func cleanValue(v string) string {
	v = strings.TrimPrefix(v, "{")
	v = strings.ReplaceAll(v, "},", "")
	v = strings.TrimSpace(v)
	for strings.HasSuffix(v, "}") && strings.Count(v, "}") > strings.Count(v, "{") {
		v = strings.TrimSpace(v[:len(v)-1])
	}
	return v
}

func braceBalance(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// Parse reads every record from r.
func Parse(r io.Reader) ([]record.Record, error) {
	p := FromReader(r)
	defer p.Close()
	return p.ReadBlock(0)
}

// ParseFile reads every record from the file at path.
func ParseFile(path string) ([]record.Record, error) {
	p := NewParser(path)
	if err := p.Open(); err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ReadBlock(0)
}
