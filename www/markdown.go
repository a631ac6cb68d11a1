package www

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Markdown renders page as markdown with navigation chrome removed. domain is
// used to resolve relative links and may be empty.
func Markdown(page []byte, domain string) (string, error) {
	converter := md.NewConverter(domain, true, nil)
	converter.Remove("script", "style", "nav", "header", "footer", "aside", "iframe", "noscript")

	markdown, err := converter.ConvertString(string(page))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(markdown, "\n\n")), nil
}
