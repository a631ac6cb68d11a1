package www

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// FetcherFunc retrieves url and returns the body along with the URL that was
// finally served after redirects.
type FetcherFunc func(ctx context.Context, url string) ([]byte, string, error)

const (
	DefaultTimeout = 20 * time.Second
	// body sizes beyond this are not articles
	maxBodySize = 8 << 20

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var httpClient = &http.Client{Timeout: DefaultTimeout}

func doFetch(req *http.Request) ([]byte, string, error) {
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	res.Body.Close()
	if res.StatusCode > 299 {
		log.Println("Headers:")
		for k, v := range res.Header {
			log.Println("    ", k, ":", v)
		}
		return nil, "", fmt.Errorf("response failed with status code: %d", res.StatusCode)
	}
	if err != nil {
		return nil, "", err
	}
	return body, res.Request.URL.String(), nil
}

// Fetcher is a plain GET with the default Go client headers.
func Fetcher(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	return doFetch(req)
}

// FetcherSpoof is a GET that presents itself as a desktop browser.
func FetcherSpoof(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	// news sites routinely reject the default Go user agent
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return doFetch(req)
}

// FetcherCombined tries each fetcher in turn and returns the first success.
func FetcherCombined(fetchers ...FetcherFunc) FetcherFunc {
	return func(ctx context.Context, url string) ([]byte, string, error) {
		var err error
		for _, fetcher := range fetchers {
			var bytes []byte
			var finalURL string
			bytes, finalURL, err = fetcher(ctx, url)
			if err == nil {
				return bytes, finalURL, nil
			}
		}
		return nil, "", err
	}
}
