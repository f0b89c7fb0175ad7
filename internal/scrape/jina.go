package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poligraft/pkg/jina"
)

// minReaderContent is the shortest reader response treated as a real page.
const minReaderContent = 100

// JinaAdapter wraps a Jina Reader client as a Scraper.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Scrape fetches a URL via the reader and rejects empty or challenge pages.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if unusable(resp) {
		return nil, eris.Errorf("jina: no usable content for %s", targetURL)
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Result{
		Page: Page{
			URL:   pageURL,
			Title: strings.TrimSpace(resp.Data.Title),
			Text:  strings.TrimSpace(resp.Data.Content),
		},
		Source: "jina",
	}, nil
}

func unusable(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < minReaderContent {
		return true
	}
	lower := strings.ToLower(content)
	for _, sig := range []string{"checking your browser", "enable javascript", "access denied", "just a moment"} {
		if strings.Contains(lower, sig) && len(content) < 1000 {
			return true
		}
	}
	return false
}
