package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rcbilson/newsnotes/llm"
	"github.com/rcbilson/newsnotes/newsapi"
	"github.com/rcbilson/newsnotes/quiz"
	"github.com/rcbilson/newsnotes/www"

	_ "net/http/pprof"
)

type searchFunc func(ctx context.Context, q newsapi.Query) ([]newsapi.Article, error)

// the newest search window when the client doesn't give one
const defaultSearchDays = 7

type deps struct {
	search   searchFunc
	fetcher  www.FetcherFunc
	notes    noteMaker
	db       Repo
	sessions *SessionStore
	limiter  *rateLimiter
}

func routes(d deps, frontendPath string) *http.ServeMux {
	sessionHandler := withSession(d.sessions, sessionMaxAge)
	limited := func(h http.Handler) http.Handler { return d.limiter.limit(h) }

	mux := http.NewServeMux()
	mux.Handle("GET /api/news", news(d.search))
	mux.Handle("GET /api/article", article(d.db, d.fetcher))
	mux.Handle("POST /api/notes", limited(sessionHandler(generateNotes(d.notes, d.db, d.fetcher))))
	mux.Handle("GET /api/notes", sessionHandler(sessionNotes()))
	mux.Handle("POST /api/quiz", limited(sessionHandler(generateQuiz(d.notes, d.db, d.fetcher))))
	mux.Handle("GET /api/quiz", sessionHandler(getQuiz()))
	mux.Handle("POST /api/quiz/answer", sessionHandler(answerQuiz()))
	mux.Handle("POST /api/quiz/submit", sessionHandler(submitQuiz()))
	mux.Handle("GET /api/saved", savedNotes(d.db))
	mux.Handle("POST /api/saved", sessionHandler(saveNote(d.db)))
	mux.Handle("DELETE /api/saved", deleteNote(d.db))
	mux.Handle("GET /api/usage", usage(d.db))
	// frontend
	mux.Handle("GET /", http.FileServer(http.Dir(frontendPath)))
	return mux
}

func handler(d deps, port int, frontendPath string) {
	http.Handle("/", routes(d, frontendPath))
	log.Println("server listening on port", port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
}

func logError(w http.ResponseWriter, msg string, code int) {
	log.Printf("%d %s", code, msg)
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func news(search searchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		q := newsapi.Query{Q: params.Get("q")}

		q.To = time.Now()
		if to := params.Get("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				logError(w, fmt.Sprintf("Invalid to date: %s", to), http.StatusBadRequest)
				return
			}
			q.To = t
		}
		q.From = q.To.AddDate(0, 0, -defaultSearchDays)
		if from := params.Get("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				logError(w, fmt.Sprintf("Invalid from date: %s", from), http.StatusBadRequest)
				return
			}
			q.From = t
		}
		if q.From.After(q.To) {
			logError(w, "Start date is after end date", http.StatusBadRequest)
			return
		}
		if countStr := params.Get("count"); countStr != "" {
			count, err := strconv.Atoi(countStr)
			if err != nil || count <= 0 {
				logError(w, fmt.Sprintf("Invalid count specification: %s", countStr), http.StatusBadRequest)
				return
			}
			q.PageSize = count
		}

		articles, err := search(r.Context(), q)
		if err != nil {
			logError(w, fmt.Sprintf("Error fetching news: %v", err), http.StatusBadGateway)
			return
		}
		writeJSON(w, articles)
	}
}

// loadArticle returns the extracted text for rawURL, from the cache when
// possible. Pages with no recognizable text are not cached.
func loadArticle(ctx context.Context, db Repo, fetcher www.FetcherFunc, rawURL string) (cachedArticle, error) {
	id := www.ArticleID(rawURL)
	if art, ok := db.GetArticle(ctx, id); ok {
		return art, nil
	}

	log.Println("fetching article", rawURL)
	page, finalURL, err := fetcher(ctx, rawURL)
	if err != nil {
		return cachedArticle{}, err
	}
	art := cachedArticle{
		Id:      id,
		Url:     finalURL,
		Title:   www.HtmlTitle(page),
		Article: www.Extract(page),
	}
	if art.Empty() {
		return art, errNoText
	}
	if err := db.InsertArticle(ctx, art); err != nil {
		log.Printf("Error caching article: %v", err)
	}
	return art, nil
}

var errNoText = errors.New("no readable text found")

func parseArticleURL(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("no URL provided")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	return raw, nil
}

func article(db Repo, fetcher www.FetcherFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawURL, err := parseArticleURL(r.URL.Query().Get("url"))
		if err != nil {
			logError(w, fmt.Sprintf("Invalid URL: %v", err), http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("format") == "markdown" {
			page, finalURL, err := fetcher(r.Context(), rawURL)
			if err != nil {
				logError(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusBadGateway)
				return
			}
			domain := ""
			if u, err := url.Parse(finalURL); err == nil {
				domain = u.Host
			}
			markdown, err := www.Markdown(page, domain)
			if err != nil {
				logError(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(markdown))
			return
		}

		art, err := loadArticle(r.Context(), db, fetcher, rawURL)
		if err != nil {
			logError(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusBadGateway)
			return
		}
		writeJSON(w, art)
	}
}

func recordUsage(ctx context.Context, db Repo, id, kind string, lengthIn, lengthOut int, stats llm.Usage) {
	err := db.Usage(ctx, Usage{
		Id:        id,
		Kind:      kind,
		LengthIn:  lengthIn,
		LengthOut: lengthOut,
		TokensIn:  stats.InputTokens,
		TokensOut: stats.OutputTokens,
	})
	if err != nil {
		log.Printf("Error recording usage: %v", err)
	}
}

func generateNotes(nm noteMaker, db Repo, fetcher www.FetcherFunc) SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		ctx := r.Context()

		var req struct {
			articleRef
			Detailed bool `json:"detailed"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logError(w, fmt.Sprintf("JSON decode error: %v", err), http.StatusBadRequest)
			return
		}
		if _, err := parseArticleURL(req.Url); err != nil {
			logError(w, fmt.Sprintf("Invalid URL: %v", err), http.StatusBadRequest)
			return
		}
		if req.Title == "" {
			logError(w, "No title provided", http.StatusBadRequest)
			return
		}
		id := www.ArticleID(req.Url)

		var stats llm.Usage
		var contents string
		source := req.Description
		if req.Detailed {
			if art, err := loadArticle(ctx, db, fetcher, req.Url); err != nil {
				log.Printf("extraction failed for %s, using description: %v", req.Url, err)
			} else {
				source = art.FullText
			}
			contents, err = nm.detailedNotes(ctx, req.articleRef, source, &stats)
		} else {
			contents, err = nm.quickNotes(ctx, req.articleRef, &stats)
		}
		if err != nil {
			logError(w, fmt.Sprintf("Error generating notes: %v", err), http.StatusBadGateway)
			return
		}
		recordUsage(ctx, db, id, "notes", len(source), len(contents), stats)

		entry := noteEntry{
			Id:       id,
			Url:      req.Url,
			Title:    req.Title,
			Contents: contents,
			Detailed: req.Detailed,
		}
		session.SetNotes(entry)
		writeJSON(w, entry)
	}
}

func sessionNotes() SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeJSON(w, session.AllNotes())
			return
		}
		n, ok := session.Notes(id)
		if !ok {
			logError(w, errNoNotes.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, n)
	}
}

type quizView struct {
	Id        string          `json:"id"`
	Title     string          `json:"title"`
	Url       string          `json:"url"`
	Questions []quiz.Question `json:"questions"`
	Selected  map[int]string  `json:"selected"`
	Submitted bool            `json:"submitted"`
}

// newQuizView hides answers and explanations until the quiz is submitted.
func newQuizView(id string, q quizState) quizView {
	questions := make([]quiz.Question, len(q.Questions))
	copy(questions, q.Questions)
	if !q.Submitted {
		for i := range questions {
			questions[i].Answer = ""
			questions[i].Explanation = ""
		}
	}
	return quizView{
		Id:        id,
		Title:     q.Title,
		Url:       q.Url,
		Questions: questions,
		Selected:  q.Selections,
		Submitted: q.Submitted,
	}
}

func generateQuiz(nm noteMaker, db Repo, fetcher www.FetcherFunc) SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		ctx := r.Context()

		var req struct {
			articleRef
			UseText bool `json:"useText"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logError(w, fmt.Sprintf("JSON decode error: %v", err), http.StatusBadRequest)
			return
		}
		if _, err := parseArticleURL(req.Url); err != nil {
			logError(w, fmt.Sprintf("Invalid URL: %v", err), http.StatusBadRequest)
			return
		}
		id := www.ArticleID(req.Url)

		content := ""
		if req.UseText {
			if art, err := loadArticle(ctx, db, fetcher, req.Url); err != nil {
				log.Printf("extraction failed for %s, quiz from description only: %v", req.Url, err)
			} else {
				content = art.FullText
			}
		}

		var stats llm.Usage
		questions, raw, err := nm.makeQuiz(ctx, req.articleRef, content, &stats)
		if err != nil {
			logError(w, fmt.Sprintf("Error generating quiz: %v", err), http.StatusBadGateway)
			return
		}
		recordUsage(ctx, db, id, "quiz", len(req.Description)+len(content), len(raw), stats)
		if len(questions) == 0 {
			log.Printf("unparseable quiz for %s:\n%s", req.Url, raw)
			logError(w, "No questions found in the generated quiz. Please try again.", http.StatusBadGateway)
			return
		}

		session.SetQuiz(id, req.Title, req.Url, questions)
		q, _ := session.Quiz(id)
		writeJSON(w, newQuizView(id, q))
	}
}

func getQuiz() SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		id := r.URL.Query().Get("id")
		q, ok := session.Quiz(id)
		if !ok {
			logError(w, errNoQuiz.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, newQuizView(id, q))
	}
}

func answerQuiz() SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		var req struct {
			Id     string `json:"id"`
			Number int    `json:"number"`
			Option string `json:"option"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logError(w, fmt.Sprintf("JSON decode error: %v", err), http.StatusBadRequest)
			return
		}
		err = session.Select(req.Id, req.Number, req.Option)
		switch {
		case errors.Is(err, errNoQuiz):
			logError(w, err.Error(), http.StatusNotFound)
		case err != nil:
			logError(w, err.Error(), http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func submitQuiz() SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		var req struct {
			Id string `json:"id"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logError(w, fmt.Sprintf("JSON decode error: %v", err), http.StatusBadRequest)
			return
		}
		result, err := session.Submit(req.Id)
		if err != nil {
			logError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, result)
	}
}

func savedNotes(db Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		count := 50
		countStr, ok := r.URL.Query()["count"]
		if ok {
			count, err = strconv.Atoi(countStr[0])
			if err != nil {
				logError(w, fmt.Sprintf("Invalid count specification: %s", countStr[0]), http.StatusBadRequest)
				return
			}
		}
		list, err := db.SavedNotes(r.Context(), count)
		if err != nil {
			logError(w, fmt.Sprintf("Error fetching saved notes: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

func saveNote(db Repo) SessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session *Session) {
		var req struct {
			Id string `json:"id"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logError(w, fmt.Sprintf("JSON decode error: %v", err), http.StatusBadRequest)
			return
		}
		n, ok := session.Notes(req.Id)
		if !ok {
			logError(w, errNoNotes.Error(), http.StatusNotFound)
			return
		}
		if err := db.SaveNote(r.Context(), n); err != nil {
			logError(w, fmt.Sprintf("Error saving notes: %v", err), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func deleteNote(db Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			logError(w, "No id provided", http.StatusBadRequest)
			return
		}
		deleted, err := db.DeleteNote(r.Context(), id)
		if err != nil {
			logError(w, fmt.Sprintf("Error deleting notes: %v", err), http.StatusInternalServerError)
			return
		}
		if !deleted {
			logError(w, errNoNotes.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func usage(db Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, out, err := db.TotalTokens(r.Context())
		if err != nil {
			logError(w, fmt.Sprintf("Error reading usage: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]int{"tokensIn": in, "tokensOut": out})
	}
}
