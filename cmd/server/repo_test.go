package main

import (
	"context"
	"testing"

	"github.com/rcbilson/newsnotes/www"
	"gotest.tools/assert"
)

func setupTest(t *testing.T) Repo {
	db, err := NewTestRepo()
	assert.NilError(t, err)
	t.Cleanup(db.Close)
	return db
}

func testArticle(url, text string) cachedArticle {
	return cachedArticle{
		Id:      www.ArticleID(url),
		Url:     url,
		Title:   "title for " + url,
		Article: www.Extract([]byte(`<div class="story">` + text + `</div>`)),
	}
}

func TestArticleCache(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	art := testArticle("http://example.com/a", "<p>First paragraph of the story text.</p><p>Second paragraph of the story text.</p>")
	assert.NilError(t, db.InsertArticle(ctx, art))

	got, ok := db.GetArticle(ctx, art.Id)
	assert.Assert(t, ok)
	assert.Equal(t, art.Url, got.Url)
	assert.Equal(t, art.Title, got.Title)
	assert.DeepEqual(t, art.Paragraphs, got.Paragraphs)
	assert.Equal(t, art.FullText, got.FullText)

	_, ok = db.GetArticle(ctx, www.ArticleID("http://example.com/b"))
	assert.Assert(t, !ok)

	// re-inserting replaces
	art.Title = "new title"
	assert.NilError(t, db.InsertArticle(ctx, art))
	got, ok = db.GetArticle(ctx, art.Id)
	assert.Assert(t, ok)
	assert.Equal(t, "new title", got.Title)
}

func TestSaveNotes(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	assert.NilError(t, db.SaveNote(ctx, noteEntry{Id: "a", Url: "http://example.com/a", Title: "A", Contents: "notes a"}))
	assert.NilError(t, db.SaveNote(ctx, noteEntry{Id: "b", Url: "http://example.com/b", Title: "B", Contents: "notes b", Detailed: true}))

	list, err := db.SavedNotes(ctx, 10)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "b", list[0].Id)
	assert.Assert(t, list[0].Detailed)
	assert.Assert(t, list[0].Saved != "")

	// saving again overwrites instead of duplicating
	assert.NilError(t, db.SaveNote(ctx, noteEntry{Id: "a", Url: "http://example.com/a", Title: "A", Contents: "better notes a"}))
	list, err = db.SavedNotes(ctx, 10)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(list))

	list, err = db.SavedNotes(ctx, 1)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(list))
}

func TestSavedNotesEmpty(t *testing.T) {
	db := setupTest(t)

	list, err := db.SavedNotes(context.Background(), 10)
	assert.NilError(t, err)
	assert.Assert(t, list != nil)
	assert.Equal(t, 0, len(list))
}

func TestDeleteNote(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	assert.NilError(t, db.SaveNote(ctx, noteEntry{Id: "a", Url: "http://example.com/a", Title: "A", Contents: "notes a"}))

	deleted, err := db.DeleteNote(ctx, "a")
	assert.NilError(t, err)
	assert.Assert(t, deleted)

	deleted, err = db.DeleteNote(ctx, "a")
	assert.NilError(t, err)
	assert.Assert(t, !deleted)
}

func TestUsage(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	in, out, err := db.TotalTokens(ctx)
	assert.NilError(t, err)
	assert.Equal(t, 0, in)
	assert.Equal(t, 0, out)

	assert.NilError(t, db.Usage(ctx, Usage{Id: "a", Kind: "notes", LengthIn: 100, LengthOut: 50, TokensIn: 30, TokensOut: 12}))
	assert.NilError(t, db.Usage(ctx, Usage{Id: "a", Kind: "quiz", LengthIn: 100, LengthOut: 80, TokensIn: 31, TokensOut: 20}))

	in, out, err = db.TotalTokens(ctx)
	assert.NilError(t, err)
	assert.Equal(t, 61, in)
	assert.Equal(t, 32, out)
}
