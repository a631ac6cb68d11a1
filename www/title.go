package www

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HtmlTitle returns the page's <title>, falling back to its og:title meta
// tag. It returns "" if neither is present.
func HtmlTitle(page []byte) string {
	z := html.NewTokenizer(bytes.NewReader(page))
	inTitle := false
	ogTitle := ""
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ogTitle
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "meta":
				if hasAttr && ogTitle == "" {
					ogTitle = ogTitleContent(z)
				}
			case "body":
				// titles don't live in the body
				return ogTitle
			}
		case html.TextToken:
			if inTitle {
				if title := strings.Join(strings.Fields(string(z.Text())), " "); title != "" {
					return title
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = false
			}
		}
	}
}

func ogTitleContent(z *html.Tokenizer) string {
	var property, content string
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "property", "name":
			property = string(val)
		case "content":
			content = string(val)
		}
		if !more {
			break
		}
	}
	if property == "og:title" {
		return strings.TrimSpace(content)
	}
	return ""
}
