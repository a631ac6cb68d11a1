package main

import (
	"context"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rcbilson/newsnotes/llm"
	"github.com/rcbilson/newsnotes/newsapi"
	"github.com/rcbilson/newsnotes/www"
)

const (
	sessionMaxAge  = 12 * time.Hour
	janitorPeriod  = 5 * time.Minute
	limiterMaxIdle = 10 * time.Minute
)

type specification struct {
	Port         int     `default:"9000"`
	FrontendPath string  `default:"/srv/newsnotes/frontend/dist"`
	DbFile       string  `default:"/srv/newsnotes/data/newsnotes.db"`
	NewsApiKey   string  `required:"true"`
	NewsApiUrl   string  `default:"https://newsapi.org/v2/everything"`
	LlmRegion    string  `default:"us-east-1"`
	LlmModel     string  `default:"us.amazon.nova-lite-v1:0"`
	LlmMaxTokens int32   `default:"4096"`
	PromptFile   string
	RateLimit    float64 `default:"0.2"`
	RateBurst    int     `default:"3"`
	TrustProxy   bool
}

var spec specification

// janitor periodically drops idle sessions and rate limiter entries.
func janitor(sessions *SessionStore, limiter *rateLimiter) {
	for range time.Tick(janitorPeriod) {
		if n := sessions.Expire(sessionMaxAge); n > 0 {
			log.Printf("expired %d idle sessions", n)
		}
		limiter.cleanup(limiterMaxIdle)
	}
}

func main() {
	err := envconfig.Process("newsnotes", &spec)
	if err != nil {
		log.Fatal("error reading environment variables:", err)
	}

	prompts, err := loadPrompts(spec.PromptFile)
	if err != nil {
		log.Fatal("error loading prompts:", err)
	}

	params := Nova_lite
	params.Region = spec.LlmRegion
	params.ModelID = spec.LlmModel
	params.MaxTokens = spec.LlmMaxTokens
	params.System = prompts.System

	llmClient, err := llm.New(context.Background(), params.Params)
	if err != nil {
		log.Fatal("error initializing llm interface:", err)
	}

	db, err := NewRepo(spec.DbFile)
	if err != nil {
		log.Fatal("error initializing database interface:", err)
	}
	defer db.Close()

	newsClient := newsapi.New(spec.NewsApiKey)
	newsClient.BaseURL = spec.NewsApiUrl

	d := deps{
		search:   newsClient.Search,
		fetcher:  www.FetcherSpoof,
		notes:    noteMaker{generate: newGenerator(llmClient, params), prompts: prompts},
		db:       db,
		sessions: NewSessionStore(),
		limiter:  newRateLimiter(spec.RateLimit, spec.RateBurst, spec.TrustProxy),
	}
	go janitor(d.sessions, d.limiter)

	handler(d, spec.Port, spec.FrontendPath)
}
