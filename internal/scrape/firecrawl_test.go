package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poligraft/pkg/firecrawl"
)

type fakeFirecrawl struct {
	resp *firecrawl.ScrapeResponse
	err  error
	req  firecrawl.ScrapeRequest
}

func (f *fakeFirecrawl) Scrape(_ context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestFirecrawlAdapter_Scrape(t *testing.T) {
	fc := &fakeFirecrawl{resp: &firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			Markdown: "  Senator Smith met with Acme Corp.\n",
			Metadata: firecrawl.Metadata{Title: "Budget Vote", StatusCode: 200},
		},
	}}

	result, err := NewFirecrawlAdapter(fc).Scrape(context.Background(), "https://news.example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "firecrawl", result.Source)
	assert.Equal(t, "Budget Vote", result.Page.Title)
	assert.Equal(t, "https://news.example.com/a", result.Page.URL)
	assert.Equal(t, "Senator Smith met with Acme Corp.", result.Page.Text)
	assert.True(t, fc.req.OnlyMainContent)
}

func TestFirecrawlAdapter_Empty(t *testing.T) {
	fc := &fakeFirecrawl{resp: &firecrawl.ScrapeResponse{Success: true}}

	_, err := NewFirecrawlAdapter(fc).Scrape(context.Background(), "https://a.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestFirecrawlAdapter_UpstreamStatus(t *testing.T) {
	fc := &fakeFirecrawl{resp: &firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			Markdown: "Not Found",
			Metadata: firecrawl.Metadata{StatusCode: 404},
		},
	}}

	_, err := NewFirecrawlAdapter(fc).Scrape(context.Background(), "https://a.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFirecrawlAdapter_ClientError(t *testing.T) {
	fc := &fakeFirecrawl{err: errors.New("boom")}

	_, err := NewFirecrawlAdapter(fc).Scrape(context.Background(), "https://a.com")
	assert.EqualError(t, err, "boom")
}
