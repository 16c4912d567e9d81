package lsb

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// Entry records a single image written by Hide.
type Entry struct {
	ID        int64
	SHA1      string
	Name      string
	Stride    int
	Length    int
	Thumbnail []byte
	Created   time.Time
}

// Ledger is the database of images that have had messages hidden in them.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens the ledger stored in file, creating it if necessary.
func NewLedger(file string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS embedding (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, name TEXT NOT NULL, stride INTEGER NOT NULL, length INTEGER NOT NULL, thumbnail BLOB, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (db *Ledger) Close() error {
	return db.db.Close()
}

// Record stores e, replacing any existing entry with the same SHA1. The
// creation time defaults to now.
func (db *Ledger) Record(e Entry) (int64, error) {
	if e.Created.IsZero() {
		e.Created = time.Now()
	}
	result, err := db.db.Exec("INSERT OR REPLACE INTO embedding (sha1, name, stride, length, thumbnail, created) VALUES (?, ?, ?, ?, ?, ?)", e.SHA1, e.Name, e.Stride, e.Length, e.Thumbnail, e.Created.Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

type scanner interface {
	Scan(...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var created int64
	if err := s.Scan(&e.ID, &e.SHA1, &e.Name, &e.Stride, &e.Length, &e.Thumbnail, &created); err != nil {
		return nil, err
	}
	e.Created = time.Unix(created, 0)
	return &e, nil
}

// FindBySHA1 returns the entry for the image with the given SHA1, or nil if
// there isn't one.
func (db *Ledger) FindBySHA1(sha string) (*Entry, error) {
	e, err := scanEntry(db.db.QueryRow("SELECT id, sha1, name, stride, length, thumbnail, created FROM embedding WHERE sha1 = ?", sha))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

// List returns every entry in the order they were recorded.
func (db *Ledger) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT id, sha1, name, stride, length, thumbnail, created FROM embedding ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}
