package bibtex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoEntries = `Some export header line

@ARTICLE{7000001,
author={A. Smith and B. Jones},
journal={IEEE Transactions on Software Engineering},
title={Mining {Software} Repositories},
year={1987},
pages={10-20},
keywords={mining;repositories},
month={May},}

@INPROCEEDINGS{7000002,
author={C. Silva},
booktitle={Proc. ICSE},
title={Testing at Scale},
Year={abcd},
PAGES={abc-20},
doi={10.1109/ICSE.2015.2},}
`

func TestReadBlock_TwoEntries(t *testing.T) {
	p := FromReader(strings.NewReader(twoEntries))
	defer p.Close()

	recs, err := p.ReadBlock(0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "7000001", first.ID)
	assert.Equal(t, "A. Smith and B. Jones", first.Author)
	assert.Equal(t, "IEEE Transactions on Software Engineering", first.Journal)
	assert.Equal(t, "Mining {Software} Repositories", first.Title)
	assert.Equal(t, "1987", first.Year)
	assert.Equal(t, 1987, first.Published)
	assert.Equal(t, "10-20", first.Pages)
	assert.Equal(t, 10, first.InitialPage)
	assert.Equal(t, 20, first.EndPage)
	assert.Equal(t, "mining;repositories", first.Keywords)
	assert.Equal(t, "May", first.Month)

	second := recs[1]
	assert.Equal(t, "7000002", second.ID)
	assert.Equal(t, "Proc. ICSE", second.BookTitle)
	assert.Equal(t, "", second.Year, "unparseable year discards the raw string")
	assert.Equal(t, 0, second.Published)
	assert.Equal(t, "abc-20", second.Pages)
	assert.Equal(t, 0, second.InitialPage)
	assert.Equal(t, 0, second.EndPage)
	assert.Equal(t, "10.1109/ICSE.2015.2", second.DOI)

	more, err := p.ReadBlock(0)
	require.NoError(t, err)
	assert.Empty(t, more)
	assert.False(t, p.HasNext())
}

func TestReadBlock_BlockSize(t *testing.T) {
	p := FromReader(strings.NewReader(twoEntries))
	defer p.Close()

	recs, err := p.ReadBlock(1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "7000001", recs[0].ID)
	assert.True(t, p.HasNext())

	recs, err = p.ReadBlock(1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "7000002", recs[0].ID)

	recs, err = p.ReadBlock(5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadBlock_NegativeSize(t *testing.T) {
	p := FromReader(strings.NewReader(twoEntries))
	_, err := p.ReadBlock(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReadBlock_MalformedFieldLine(t *testing.T) {
	input := `@ARTICLE{1,
author={A},
this line has no equals sign
year={2015},}

@ARTICLE{2,
author={B},}
`
	p := FromReader(strings.NewReader(input))
	recs, err := p.ReadBlock(0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFieldLine))
	assert.Nil(t, recs, "no partial records on error")

	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 3, syn.Line)
	assert.Equal(t, "this line has no equals sign", syn.Text)
}

func TestReadBlock_FailureIsSticky(t *testing.T) {
	input := `@ARTICLE{1,
author={A},
no equals here
}

@ARTICLE{2,
author={B},}
`
	p := FromReader(strings.NewReader(input))
	_, err := p.ReadBlock(1)
	require.ErrorIs(t, err, ErrMalformedFieldLine)

	assert.False(t, p.HasNext(), "no input after a failed read")
	recs, again := p.ReadBlock(0)
	assert.Nil(t, recs, "entries after the bad line must not be returned")
	assert.Equal(t, err, again)
}

func TestReadBlock_MalformedDiscardsEarlierEntriesInBlock(t *testing.T) {
	input := `@ARTICLE{1,
year={2015},}
@ARTICLE{2,
=no key},}
`
	recs, err := Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMalformedFieldLine)
	assert.Nil(t, recs)
}

func TestReadBlock_EmptyValueIsMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("@ARTICLE{1,\nauthor=\n"))
	assert.ErrorIs(t, err, ErrMalformedFieldLine)
}

func TestReadBlock_UnterminatedEntry(t *testing.T) {
	input := `@ARTICLE{1,
author={A},
year={2015},
`
	_, err := Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrUnterminatedEntry)
}

func TestReadBlock_NoEntries(t *testing.T) {
	recs, err := Parse(strings.NewReader("just some text\n\nand more\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadBlock_UnknownFieldsIgnored(t *testing.T) {
	input := "@ARTICLE{9,\nabstract={long text},\ncountry={Brazil},\ntitle={T},}\n"
	recs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "T", recs[0].Title)
	assert.Empty(t, recs[0].Country, "country is set by enrichment only")
}

func TestReadBlock_CaseInsensitiveKeysAndSpacing(t *testing.T) {
	input := "  @Article{ key-1 ,\r\n  TITLE = {Spaced Out},\r\n  KeyWords = {a; b},}\r\n"
	recs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "key-1", recs[0].ID)
	assert.Equal(t, "Spaced Out", recs[0].Title)
	assert.Equal(t, "a; b", recs[0].Keywords)
}

func TestReadBlock_ClosingBraceOnOwnFieldLine(t *testing.T) {
	input := "@ARTICLE{3,\ntitle={First},\nyear={2016}}\n"
	recs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2016, recs[0].Published)
}

func TestReadBlock_FinalLineWithoutNewline(t *testing.T) {
	recs, err := Parse(strings.NewReader("@ARTICLE{4,\nyear={2014},}"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2014", recs[0].Year)
}

func TestParserLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte(twoEntries), 0644))

	p := NewParser(path)
	assert.False(t, p.IsOpen())
	assert.False(t, p.HasNext())

	_, err := p.ReadBlock(0)
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, p.Open())
	assert.ErrorIs(t, p.Open(), ErrAlreadyOpen)
	assert.True(t, p.HasNext())

	recs, err := p.ReadBlock(0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.False(t, p.HasNext())

	_, err = p.ReadBlock(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Open(), ErrClosed)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.bib"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{value},", "value"},
		{"{May},}", "May"},
		{"{1987}}", "1987"},
		{"{A {B} C},", "A {B} C"},
		{"bare", "bare"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanValue(tt.in), "cleanValue(%q)", tt.in)
	}
}

func TestEntryID(t *testing.T) {
	assert.Equal(t, "7000001", entryID("@ARTICLE{7000001,"))
	assert.Equal(t, "7000001", entryID("@ARTICLE{7000001,  "))
	assert.Equal(t, "", entryID("@ARTICLE{,"))
	assert.Equal(t, "@misc", entryID("@misc"))
}
