package main

import (
	"context"
	"fmt"

	"github.com/rcbilson/newsnotes/www"
)

var urls = [...]string{
	"https://www.thehindu.com/news/national/",
	"https://indianexpress.com/section/india/",
	"https://thewire.in/government",
	//"https://scroll.in/latest",
	//"https://www.thequint.com/news/india",
}

func FetchTest(fetcher www.FetcherFunc, name string) {
	fmt.Printf("%s ============================\n", name)
	errors := 0
	successes := 0
	for _, url := range urls {
		article, finalURL, err := www.ExtractURL(context.Background(), fetcher, url)
		if err != nil {
			fmt.Printf("%s error: %v\n", url, err)
			errors++
		} else {
			fmt.Printf("%s success final: %s paragraphs: %d length: %d\n", url, finalURL, len(article.Paragraphs), len(article.FullText))
			successes++
		}
	}
	fmt.Printf("%s: successes:%d errors:%d\n", name, successes, errors)
}

func main() {
	FetchTest(www.Fetcher, "Fetcher")
	FetchTest(www.FetcherSpoof, "FetcherSpoof")
	FetchTest(www.FetcherCombined(www.FetcherSpoof, www.Fetcher), "FetcherCombined")
}
