package main

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rcbilson/newsnotes/sqlite"
	"github.com/rcbilson/newsnotes/www"
)

type Usage struct {
	Id        string
	Kind      string
	LengthIn  int
	LengthOut int
	TokensIn  int
	TokensOut int
}

// cachedArticle is an extracted article as stored by URL.
type cachedArticle struct {
	Id    string `json:"id"`
	Url   string `json:"url"`
	Title string `json:"title"`
	www.Article
}

type savedNote struct {
	noteEntry
	Saved string `json:"saved"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(dbfile string) (Repo, error) {
	db, err := sqlite.NewFromFile(dbfile, schema)
	if err != nil {
		return Repo{}, err
	}

	return Repo{db}, nil
}

func NewTestRepo() (Repo, error) {
	db, err := sqlite.NewFromMemory(schema)
	if err != nil {
		return Repo{}, err
	}

	return Repo{db}, err
}

func (repo *Repo) Close() {
	repo.db.Close()
}

// Returns the extracted article for id if one has been cached
func (repo *Repo) GetArticle(ctx context.Context, id string) (cachedArticle, bool) {
	row := repo.db.QueryRowContext(ctx, "SELECT url, title, fullText FROM articles WHERE id = ?", id)
	art := cachedArticle{Id: id}
	var title sql.NullString
	err := row.Scan(&art.Url, &title, &art.FullText)
	if err != nil {
		return art, false
	}
	art.Title = title.String
	art.Paragraphs = strings.Split(art.FullText, "\n\n")
	return art, true
}

// Cache an extracted article, replacing any earlier extraction
func (repo *Repo) InsertArticle(ctx context.Context, art cachedArticle) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO articles (id, url, title, fullText) VALUES (?, ?, ?, ?)",
		art.Id, art.Url, art.Title, art.FullText)
	return err
}

// Save notes permanently, overwriting notes saved earlier for the same article
func (repo *Repo) SaveNote(ctx context.Context, n noteEntry) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO notes (id, url, title, contents, detailed) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title, contents = excluded.contents,
		  detailed = excluded.detailed, saved = datetime('now')`,
		n.Id, n.Url, n.Title, n.Contents, n.Detailed)
	return err
}

// Returns saved notes, most recently saved first
func (repo *Repo) SavedNotes(ctx context.Context, count int) ([]savedNote, error) {
	rows, err := repo.db.QueryContext(ctx,
		"SELECT id, url, title, contents, detailed, saved FROM notes ORDER BY saved DESC, rowid DESC LIMIT ?", count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []savedNote{}

	for rows.Next() {
		var r savedNote
		var title sql.NullString
		err := rows.Scan(&r.Id, &r.Url, &title, &r.Contents, &r.Detailed, &r.Saved)
		if err != nil {
			return nil, err
		}
		r.Title = title.String
		result = append(result, r)
	}
	return result, rows.Err()
}

// Delete saved notes; reports whether anything was deleted
func (repo *Repo) DeleteNote(ctx context.Context, id string) (bool, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (repo *Repo) Usage(ctx context.Context, usage Usage) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO usage (id, kind, lengthIn, lengthOut, tokensIn, tokensOut) VALUES (?, ?, ?, ?, ?, ?)",
		usage.Id, usage.Kind, usage.LengthIn, usage.LengthOut, usage.TokensIn, usage.TokensOut)
	return err
}

// Returns total tokens used so far as (in, out)
func (repo *Repo) TotalTokens(ctx context.Context) (int, int, error) {
	var in, out int
	err := repo.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(tokensIn), 0), COALESCE(SUM(tokensOut), 0) FROM usage").Scan(&in, &out)
	return in, out, err
}
