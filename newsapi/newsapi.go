// Package newsapi searches the newsapi.org "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2/everything"
	DefaultPageSize = 10
	dateLayout      = "2006-01-02"
)

// DefaultSources are the Indian dailies most useful for current affairs.
var DefaultSources = []string{
	"the-hindu",
	"the-times-of-india",
	"the-indian-express",
	"the-wire",
	"scroll-in",
	"the-quint",
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage,omitempty"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content,omitempty"`
}

// complete reports whether the fields a reader needs are all present.
func (a Article) complete() bool {
	return a.Title != "" && a.Description != "" && a.Source.Name != "" && a.PublishedAt != "" && a.URL != ""
}

type Query struct {
	Q        string
	Sources  []string
	From     time.Time
	To       time.Time
	Language string
	SortBy   string
	PageSize int
}

// APIError is returned when the service answers with status "error".
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if len(q.Sources) > 0 {
		v.Set("sources", strings.Join(q.Sources, ","))
	}
	if !q.From.IsZero() {
		v.Set("from", q.From.Format(dateLayout))
	}
	if !q.To.IsZero() {
		v.Set("to", q.To.Format(dateLayout))
	}
	language := q.Language
	if language == "" {
		language = "en"
	}
	v.Set("language", language)
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "publishedAt"
	}
	v.Set("sortBy", sortBy)
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v.Set("pageSize", strconv.Itoa(pageSize))
	return v
}

// Search runs q and returns the matching articles that carry a title,
// description, source name, publication time and URL. Articles missing any of
// those are dropped.
func (c *Client) Search(ctx context.Context, q Query) ([]Article, error) {
	if q.Q == "" && len(q.Sources) == 0 {
		q.Sources = DefaultSources
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.values().Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading news response: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decoding news response (status %d): %w", res.StatusCode, err)
	}
	if r.Status != "ok" || res.StatusCode > 299 {
		return nil, &APIError{StatusCode: res.StatusCode, Code: r.Code, Message: r.Message}
	}

	articles := []Article{}
	for _, a := range r.Articles {
		if a.complete() {
			articles = append(articles, a)
		}
	}
	return articles, nil
}
