package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rcbilson/newsnotes/www"
)

type cached struct {
	Id       string
	Url      string
	FullText string
}

type migrationStats struct {
	total     int
	processed int
	updated   int
	skipped   int
	failed    int
}

func getAllArticles(ctx context.Context, db *sql.DB) ([]cached, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, url, fullText FROM articles ORDER BY fetched")
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []cached
	for rows.Next() {
		var art cached
		if err := rows.Scan(&art.Id, &art.Url, &art.FullText); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, art)
	}
	return articles, rows.Err()
}

func updateArticleText(ctx context.Context, db *sql.DB, id, fullText string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE articles SET fullText = ?, fetched = datetime('now') WHERE id = ?",
		fullText, id)
	return err
}

// reextract fetches art again and stores the current extractor's output when
// it differs from what is cached.
func reextract(ctx context.Context, db *sql.DB, art cached, fetcher www.FetcherFunc, dryRun bool, stats *migrationStats) error {
	stats.processed++
	log.Printf("[%d/%d] Processing: %s", stats.processed, stats.total, art.Url)

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	extracted, _, err := www.ExtractURL(timeoutCtx, fetcher, art.Url)
	if err != nil {
		stats.failed++
		return fmt.Errorf("failed to extract %s: %w", art.Url, err)
	}
	if extracted.Empty() {
		stats.failed++
		return fmt.Errorf("no text found at %s", art.Url)
	}

	if extracted.FullText == art.FullText {
		log.Printf("  SKIP: text unchanged for %s", art.Url)
		stats.skipped++
		return nil
	}

	if dryRun {
		log.Printf("  DRY-RUN: would update %s (%d -> %d bytes)", art.Url, len(art.FullText), len(extracted.FullText))
	} else {
		if err := updateArticleText(timeoutCtx, db, art.Id, extracted.FullText); err != nil {
			stats.failed++
			return fmt.Errorf("failed to update %s: %w", art.Url, err)
		}
		log.Printf("  SUCCESS: updated %s", art.Url)
	}
	stats.updated++
	return nil
}

func main() {
	var (
		dbFile = flag.String("db", "/srv/newsnotes/data/newsnotes.db", "Path to database file")
		dryRun = flag.Bool("dry-run", false, "Show what would be done without making changes")
		limit  = flag.Int("limit", 0, "Limit number of articles to process (0 = all)")
		delay  = flag.Duration("delay", 500*time.Millisecond, "Pause between fetches")
	)
	flag.Parse()

	log.Printf("Re-extracting cached articles")
	log.Printf("Database: %s", *dbFile)
	log.Printf("Dry run: %v", *dryRun)

	// the server owns the schema; this only touches existing rows
	db, err := sql.Open("sqlite3", *dbFile+"?_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	articles, err := getAllArticles(ctx, db)
	if err != nil {
		log.Fatalf("Failed to get articles: %v", err)
	}
	if len(articles) == 0 {
		log.Printf("No cached articles found")
		return
	}
	if *limit > 0 && *limit < len(articles) {
		articles = articles[:*limit]
	}

	fetcher := www.FetcherCombined(www.FetcherSpoof, www.Fetcher)
	stats := &migrationStats{total: len(articles)}

	startTime := time.Now()
	for _, art := range articles {
		if err := reextract(ctx, db, art, fetcher, *dryRun, stats); err != nil {
			log.Printf("  ERROR: %v", err)
		}
		time.Sleep(*delay)
	}

	log.Printf("=== Re-extraction complete ===")
	log.Printf("Total articles: %d", stats.total)
	log.Printf("Processed: %d", stats.processed)
	log.Printf("Updated: %d", stats.updated)
	log.Printf("Skipped (unchanged): %d", stats.skipped)
	log.Printf("Failed: %d", stats.failed)
	log.Printf("Duration: %v", time.Since(startTime))

	if *dryRun {
		log.Printf("This was a dry run. Run without -dry-run to apply changes.")
	}
}
