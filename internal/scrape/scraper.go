// Package scrape extracts the title and readable body of a web page, trying
// a direct fetch first and falling back to hosted readers.
package scrape

import (
	"context"
)

// Page is the extracted content of a URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Result holds an extracted page with the scraper that produced it.
type Result struct {
	Page   Page
	Source string // e.g. "local_http", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}
