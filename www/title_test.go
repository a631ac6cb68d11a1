package www

import (
	"testing"

	"gotest.tools/assert"
)

func TestHtmlTitle(t *testing.T) {
	assert.Equal(t, "Monsoon update", HtmlTitle([]byte(storyPage)))
	assert.Equal(t, "Spaced out title", HtmlTitle([]byte("<title>\n  Spaced   out\ttitle </title>")))
	assert.Equal(t, "From OG", HtmlTitle([]byte(`<head><meta property="og:title" content=" From OG "></head><body><title>late</title></body>`)))
	assert.Equal(t, "Real", HtmlTitle([]byte(`<meta property="og:title" content="OG"><title>Real</title>`)))
	assert.Equal(t, "", HtmlTitle([]byte("<p>no title</p>")))
	assert.Equal(t, "", HtmlTitle(nil))
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct{ in, out string }{
		{"https://WWW.TheHindu.com/news/story.ece", "https://www.thehindu.com/news/story.ece"},
		{"https://example.com/a/b/?utm_source=x&utm_medium=y#comments", "https://example.com/a/b"},
		{"https://example.com/a?id=7&fbclid=abc", "https://example.com/a?id=7"},
		{"https://example.com/", "https://example.com/"},
	}
	for _, tt := range tests {
		got, err := CanonicalURL(tt.in)
		assert.NilError(t, err)
		assert.Equal(t, tt.out, got)
	}

	_, err := CanonicalURL("http://[::1")
	assert.Assert(t, err != nil)
}

func TestArticleID(t *testing.T) {
	a := ArticleID("https://example.com/story?utm_source=twitter")
	b := ArticleID("https://EXAMPLE.com/story#top")
	assert.Equal(t, a, b)
	assert.Equal(t, 24, len(a))
	assert.Assert(t, a != ArticleID("https://example.com/other-story"))
}
