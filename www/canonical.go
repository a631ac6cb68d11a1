package www

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

var trackingParams = []string{"utm_", "fbclid", "gclid", "ocid", "ref"}

// CanonicalURL strips the fragment and tracking parameters from rawURL and
// lower-cases the host so the same story reached through different links
// compares equal.
func CanonicalURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	parsedURL.Fragment = ""
	parsedURL.Host = strings.ToLower(parsedURL.Host)

	query := parsedURL.Query()
	for key := range query {
		for _, p := range trackingParams {
			if strings.HasPrefix(strings.ToLower(key), p) {
				query.Del(key)
				break
			}
		}
	}
	parsedURL.RawQuery = query.Encode()

	if len(parsedURL.Path) > 1 {
		parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")
	}
	return parsedURL.String(), nil
}

// ArticleID is a stable key for the article at rawURL. Titles are not unique
// across sources, URLs are.
func ArticleID(rawURL string) string {
	canonical, err := CanonicalURL(rawURL)
	if err != nil {
		canonical = rawURL
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:12])
}
