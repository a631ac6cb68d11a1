package www

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/assert"
)

const storyPage = `<html><head><title>Monsoon update</title></head><body>
<div class="story-body"><p>The India Meteorological Department issued an orange alert.</p></div>
</body></html>`

func newsServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != browserUserAgent {
			http.Error(w, "bots not welcome", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, storyPage)
	})
	mux.HandleFunc("/old-story", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/story", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherSpoof(t *testing.T) {
	srv := newsServer(t)

	body, finalURL, err := FetcherSpoof(context.Background(), srv.URL+"/story")
	assert.NilError(t, err)
	assert.Equal(t, storyPage, string(body))
	assert.Equal(t, srv.URL+"/story", finalURL)
}

func TestFetcherStatus(t *testing.T) {
	srv := newsServer(t)

	// the plain fetcher doesn't send a browser user agent
	_, _, err := Fetcher(context.Background(), srv.URL+"/story")
	assert.ErrorContains(t, err, "status code: 403")

	_, _, err = FetcherSpoof(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status code: 404")
}

func TestFetcherRedirect(t *testing.T) {
	srv := newsServer(t)

	_, finalURL, err := FetcherSpoof(context.Background(), srv.URL+"/old-story")
	assert.NilError(t, err)
	assert.Equal(t, srv.URL+"/story", finalURL)
}

func TestFetcherCombined(t *testing.T) {
	srv := newsServer(t)

	fetch := FetcherCombined(Fetcher, FetcherSpoof)
	body, _, err := fetch(context.Background(), srv.URL+"/story")
	assert.NilError(t, err)
	assert.Equal(t, storyPage, string(body))

	_, _, err = fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}

func TestExtractURL(t *testing.T) {
	srv := newsServer(t)

	article, finalURL, err := ExtractURL(context.Background(), FetcherSpoof, srv.URL+"/old-story")
	assert.NilError(t, err)
	assert.Equal(t, srv.URL+"/story", finalURL)
	assert.DeepEqual(t, []string{"The India Meteorological Department issued an orange alert."}, article.Paragraphs)
}

func TestExtractURLFailure(t *testing.T) {
	failing := func(context.Context, string) ([]byte, string, error) {
		return nil, "", errors.New("timeout")
	}
	article, _, err := ExtractURL(context.Background(), failing, "http://example.com")
	assert.Error(t, err, "timeout")
	assert.Assert(t, article.Empty())
}
