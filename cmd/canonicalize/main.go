package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rcbilson/newsnotes/www"
)

// row is one keyed record in either the articles or the notes table.
type row struct {
	Id    string
	Url   string
	Stamp string
}

type canonicalizationStats struct {
	total             int
	rekeyed           int
	duplicatesRemoved int
	errors            int
}

// table describes how to read and rewrite the keyed rows of one table.
type table struct {
	name  string
	stamp string
}

var tables = []table{
	{name: "articles", stamp: "fetched"},
	{name: "notes", stamp: "saved"},
}

func main() {
	var dbPath = flag.String("db", "", "Path to SQLite database file")
	var dryRun = flag.Bool("dry-run", false, "Show what would be done without making changes")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Database path is required. Use -db flag to specify the path.")
	}

	db, err := sql.Open("sqlite3", *dbPath+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	log.Printf("Re-keying rows by canonical URL (dry-run: %v)", *dryRun)

	for _, t := range tables {
		stats := &canonicalizationStats{}
		if err := canonicalizeTable(ctx, db, t, stats, *dryRun); err != nil {
			log.Fatalf("Canonicalizing %s failed: %v", t.name, err)
		}
		log.Printf("%s: %d rows, %d re-keyed, %d duplicates removed, %d errors",
			t.name, stats.total, stats.rekeyed, stats.duplicatesRemoved, stats.errors)
	}

	if *dryRun {
		log.Printf("This was a dry run. Re-run without -dry-run to apply changes.")
	}
}

// canonicalizeTable gives every row the id its URL maps to today. When several
// rows land on the same id only the most recent survives.
func canonicalizeTable(ctx context.Context, db *sql.DB, t table, stats *canonicalizationStats, dryRun bool) error {
	rows, err := getAllRows(ctx, db, t)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}
	stats.total = len(rows)

	groups := make(map[string][]row)
	var order []string
	for _, r := range rows {
		id := www.ArticleID(r.Url)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}

	for _, id := range order {
		group := groups[id]
		keep := newest(group)

		for i, r := range group {
			if i == keep {
				continue
			}
			log.Printf("  -> Removing duplicate %s row %s (%s)", t.name, r.Id, r.Url)
			if !dryRun {
				if err := deleteRow(ctx, db, t, r.Id); err != nil {
					log.Printf("ERROR: Failed to delete %s: %v", r.Id, err)
					stats.errors++
					continue
				}
			}
			stats.duplicatesRemoved++
		}

		kept := group[keep]
		if kept.Id == id {
			continue
		}
		log.Printf("Re-keying %s: %s -> %s", kept.Url, kept.Id, id)
		if !dryRun {
			if err := updateRowID(ctx, db, t, kept.Id, id); err != nil {
				log.Printf("ERROR: Failed to re-key %s: %v", kept.Id, err)
				stats.errors++
				continue
			}
		}
		stats.rekeyed++
	}
	return nil
}

func getAllRows(ctx context.Context, db *sql.DB, t table) ([]row, error) {
	query := fmt.Sprintf("SELECT id, url, COALESCE(%s, '') FROM %s ORDER BY rowid", t.stamp, t.name)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Id, &r.Url, &r.Stamp); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// newest returns the index of the most recently written row.
func newest(group []row) int {
	best := 0
	for i, r := range group[1:] {
		if r.Stamp >= group[best].Stamp {
			best = i + 1
		}
	}
	return best
}

func updateRowID(ctx context.Context, db *sql.DB, t table, oldID, newID string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET id = ? WHERE id = ?", t.name), newID, oldID)
	return err
}

func deleteRow(ctx context.Context, db *sql.DB, t table, id string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	return err
}
