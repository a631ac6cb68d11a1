package www

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Article is the readable text recovered from a news page.
type Article struct {
	Paragraphs []string `json:"paragraphs"`
	FullText   string   `json:"fullText"`
}

// Empty reports whether no content was recognized.
func (a Article) Empty() bool {
	return len(a.Paragraphs) == 0
}

// shorter fragments are navigation and boilerplate
const minParagraphLen = 20

var (
	containerClass = regexp.MustCompile(`(?i)article|content|story|main|body|text`)
	blankLines     = regexp.MustCompile(`\n\s*\n`)
)

const (
	containerTags = "article, section, div, main"
	textTags      = "h1, h2, h3, h4, h5, h6, p"
	landmarkTags  = "main, [role=main]"
	noiseTags     = "script, style, nav, header, footer, aside, iframe, noscript"
)

type strategy func(doc *goquery.Document) []string

// Extract pulls article text out of a page. It tries, in order, content
// containers, every paragraph, the main landmark and finally the whole
// document, stopping at the first that yields anything. Markup it cannot make
// sense of produces an empty Article.
func Extract(page []byte) Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return newArticle(nil)
	}
	// fromDocument strips nodes from doc, so it has to stay last
	for _, s := range []strategy{fromContainers, fromParagraphs, fromLandmark, fromDocument} {
		if paragraphs := longOnly(normalize(s(doc))); len(paragraphs) > 0 {
			return newArticle(paragraphs)
		}
	}
	return newArticle(nil)
}

// ExtractURL fetches url and extracts its article. The returned string is the
// URL that actually served the page.
func ExtractURL(ctx context.Context, fetch FetcherFunc, url string) (Article, string, error) {
	page, finalURL, err := fetch(ctx, url)
	if err != nil {
		return newArticle(nil), "", err
	}
	return Extract(page), finalURL, nil
}

// NormalizeText collapses runs of blank lines to a single blank line and all
// other whitespace to single spaces.
func NormalizeText(text string) string {
	return strings.Join(normalize([]string{text}), "\n\n")
}

func newArticle(paragraphs []string) Article {
	if paragraphs == nil {
		paragraphs = []string{}
	}
	return Article{Paragraphs: paragraphs, FullText: strings.Join(paragraphs, "\n\n")}
}

func fromContainers(doc *goquery.Document) []string {
	var result []string
	matched := map[*html.Node]bool{}
	doc.Find(containerTags).Each(func(_ int, s *goquery.Selection) {
		class, ok := s.Attr("class")
		if !ok || !containerClass.MatchString(class) {
			return
		}
		matched[s.Get(0)] = true
		// an enclosing container already contributed these paragraphs
		for p := s.Get(0).Parent; p != nil; p = p.Parent {
			if matched[p] {
				return
			}
		}
		result = append(result, texts(s.Find(textTags))...)
	})
	return result
}

func fromParagraphs(doc *goquery.Document) []string {
	return texts(doc.Find("p"))
}

func fromLandmark(doc *goquery.Document) []string {
	main := doc.Find(landmarkTags).First()
	if main.Length() == 0 {
		return nil
	}
	return []string{nodeText(main.Get(0), "\n\n")}
}

func fromDocument(doc *goquery.Document) []string {
	doc.Find(noiseTags).Remove()
	return []string{doc.Find("body").Text()}
}

func texts(sel *goquery.Selection) []string {
	var result []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			result = append(result, text)
		}
	})
	return result
}

// nodeText joins the trimmed text nodes under n with sep, skipping script and
// style content.
func nodeText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}

// normalize splits every segment on blank lines and squeezes whitespace inside
// the resulting paragraphs, dropping any that end up empty.
func normalize(segments []string) []string {
	var result []string
	for _, segment := range segments {
		for _, p := range blankLines.Split(segment, -1) {
			p = strings.Join(strings.Fields(p), " ")
			if p != "" {
				result = append(result, p)
			}
		}
	}
	return result
}

// longOnly drops paragraphs too short to be article text. It runs after
// normalize so a blank line inside an element can't leave a stub behind.
func longOnly(paragraphs []string) []string {
	var result []string
	for _, p := range paragraphs {
		if utf8.RuneCountInString(p) > minParagraphLen {
			result = append(result, p)
		}
	}
	return result
}
