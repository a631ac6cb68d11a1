package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/rcbilson/newsnotes/quiz"
	"github.com/rcbilson/newsnotes/www"
)

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Fatal("encoding output:", err)
	}
}

func main() {
	var (
		pageURL  = flag.String("url", "", "Fetch and extract the article at this URL")
		file     = flag.String("file", "", "Read HTML (or quiz markdown with -quiz) from this file; - for stdin")
		quizMode = flag.Bool("quiz", false, "Parse the input as quiz markdown instead of HTML")
		markdown = flag.Bool("markdown", false, "Print the page as markdown instead of extracted paragraphs")
	)
	flag.Parse()

	if *quizMode {
		text, err := readInput(*file)
		if err != nil {
			log.Fatal("reading quiz:", err)
		}
		printJSON(quiz.Parse(string(text)))
		return
	}

	var page []byte
	domain := ""
	if *pageURL != "" {
		var finalURL string
		var err error
		fetcher := www.FetcherCombined(www.FetcherSpoof, www.Fetcher)
		page, finalURL, err = fetcher(context.Background(), *pageURL)
		if err != nil {
			log.Fatal("fetching page:", err)
		}
		if u, err := url.Parse(finalURL); err == nil {
			domain = u.Host
		}
	} else {
		var err error
		page, err = readInput(*file)
		if err != nil {
			log.Fatal("reading page:", err)
		}
	}

	if *markdown {
		text, err := www.Markdown(page, domain)
		if err != nil {
			log.Fatal("converting page:", err)
		}
		fmt.Println(text)
		return
	}

	article := www.Extract(page)
	if article.Empty() {
		log.Println("no article text found")
	}
	printJSON(struct {
		Title string `json:"title"`
		www.Article
	}{www.HtmlTitle(page), article})
}
