// Package sqlite opens sqlite databases and brings their schema up to date.
//
// A schema is a list of versions; element i holds the statements that move a
// database from version i to version i+1. The current version is kept in the
// metadata table.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func NewFromFile(dbfile string, schema []string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbfile+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := migrate(db, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewFromMemory returns a private in-memory database. It is limited to one
// connection since every new connection would see an empty database.
func NewFromMemory(schema []string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:?_fk=1")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := migrate(db, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Version returns the schema version recorded in db.
func Version(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT schemaVersion FROM metadata WHERE id = 0").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

func migrate(db *sql.DB, schema []string) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS metadata (
  id integer primary key,
  schemaVersion integer
)`)
	if err != nil {
		return fmt.Errorf("creating metadata table: %w", err)
	}

	version, err := Version(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > len(schema) {
		return fmt.Errorf("database schema version %d is newer than this program (%d)", version, len(schema))
	}

	for v := version; v < len(schema); v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(schema[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying schema version %d: %w", v+1, err)
		}
		_, err = tx.Exec("INSERT INTO metadata (id, schemaVersion) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET schemaVersion = excluded.schemaVersion", v+1)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("recording schema version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
