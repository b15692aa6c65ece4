package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/infostats/internal/record"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `id, doi, author, title, journal, booktitle,
	volume, number, issn, month, keywords,
	year, published, pages, initial_page, end_page,
	venue_id, country, citation_count, visualizations,
	impact_factor, eigenfactor, influence_score`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			doi TEXT,
			author TEXT,
			title TEXT,
			journal TEXT,
			booktitle TEXT,
			volume TEXT,
			number TEXT,
			issn TEXT,
			month TEXT,
			keywords TEXT,
			year TEXT,
			published INTEGER NOT NULL DEFAULT 0,
			pages TEXT,
			initial_page INTEGER NOT NULL DEFAULT 0,
			end_page INTEGER NOT NULL DEFAULT 0,
			venue_id TEXT,
			country TEXT,
			citation_count INTEGER NOT NULL DEFAULT 0,
			visualizations INTEGER NOT NULL DEFAULT 0,
			impact_factor REAL NOT NULL DEFAULT 0,
			eigenfactor REAL NOT NULL DEFAULT 0,
			influence_score REAL NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_records_year ON records(year);
		CREATE INDEX IF NOT EXISTS idx_records_country ON records(country);
	`

	_, err := db.Exec(schema)
	return err
}

// Insert appends records to the table in a single transaction.
// Insertion order is preserved by All.
func (d *DB) Insert(recs []record.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRecords(tx, recs); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll clears the table and inserts recs.
func (d *DB) ReplaceAll(recs []record.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records table: %w", err)
	}
	if err := insertRecords(tx, recs); err != nil {
		return err
	}
	return tx.Commit()
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	if err := d.ReplaceAll(recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func insertRecords(tx *sql.Tx, recs []record.Record) error {
	stmt, err := tx.Prepare(`
		INSERT INTO records (
			id, doi, author, title, journal, booktitle,
			volume, number, issn, month, keywords,
			year, published, pages, initial_page, end_page,
			venue_id, country, citation_count, visualizations,
			impact_factor, eigenfactor, influence_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing records insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err := stmt.Exec(
			r.ID, nullableStringValue(r.DOI), nullableStringValue(r.Author), nullableStringValue(r.Title),
			nullableStringValue(r.Journal), nullableStringValue(r.BookTitle),
			nullableStringValue(r.Volume), nullableStringValue(r.Number), nullableStringValue(r.ISSN),
			nullableStringValue(r.Month), nullableStringValue(r.Keywords),
			nullableStringValue(r.Year), r.Published, nullableStringValue(r.Pages), r.InitialPage, r.EndPage,
			nullableStringValue(r.VenueID), nullableStringValue(r.Country), r.CitationCount, r.Visualizations,
			r.ImpactFactor, r.Eigenfactor, r.InfluenceScore,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}
	return nil
}

// All returns every record in insertion order.
func (d *DB) All() ([]record.Record, error) {
	rows, err := d.db.Query(`SELECT ` + selectRecordFields + ` FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByID retrieves the first record with the given ID, or nil.
func (d *DB) GetByID(id string) (*record.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE id = ? ORDER BY seq LIMIT 1`, id)
	return scanRecord(row)
}

// Count returns the total number of records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*record.Record, error) {
	var r record.Record
	var doi, author, title, journal, booktitle sql.NullString
	var volume, number, issn, month, keywords sql.NullString
	var year, pages, venueID, country sql.NullString

	err := s.Scan(
		&r.ID, &doi, &author, &title, &journal, &booktitle,
		&volume, &number, &issn, &month, &keywords,
		&year, &r.Published, &pages, &r.InitialPage, &r.EndPage,
		&venueID, &country, &r.CitationCount, &r.Visualizations,
		&r.ImpactFactor, &r.Eigenfactor, &r.InfluenceScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	r.DOI = doi.String
	r.Author = author.String
	r.Title = title.String
	r.Journal = journal.String
	r.BookTitle = booktitle.String
	r.Volume = volume.String
	r.Number = number.String
	r.ISSN = issn.String
	r.Month = month.String
	r.Keywords = keywords.String
	r.Year = year.String
	r.Pages = pages.String
	r.VenueID = venueID.String
	r.Country = country.String

	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	var recs []record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			recs = append(recs, *r)
		}
	}
	return recs, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
