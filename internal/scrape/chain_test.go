package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockScraper implements Scraper for testing.
type mockScraper struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (m *mockScraper) Name() string { return m.name }
func (m *mockScraper) Scrape(_ context.Context, _ string) (*Result, error) {
	m.calls++
	return m.result, m.err
}

func TestChain_Scrape_FirstSuccess(t *testing.T) {
	s1 := &mockScraper{
		name:   "primary",
		result: &Result{Page: Page{URL: "https://news.example.com", Title: "Home", Text: "content"}, Source: "primary"},
	}
	s2 := &mockScraper{name: "fallback"}

	result, err := NewChain(s1, s2).Scrape(context.Background(), "https://news.example.com")

	require.NoError(t, err)
	assert.Equal(t, "primary", result.Source)
	assert.Equal(t, 0, s2.calls)
}

func TestChain_Scrape_FallbackOnError(t *testing.T) {
	s1 := &mockScraper{name: "primary", err: errors.New("failed")}
	s2 := &mockScraper{
		name:   "fallback",
		result: &Result{Page: Page{URL: "https://news.example.com", Title: "Home"}, Source: "fallback"},
	}

	result, err := NewChain(s1, s2).Scrape(context.Background(), "https://news.example.com")

	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Source)
	assert.Equal(t, 1, s1.calls)
}

func TestChain_Scrape_AllFail(t *testing.T) {
	s1 := &mockScraper{name: "a", err: errors.New("a failed")}
	s2 := &mockScraper{name: "b", err: errors.New("b failed")}

	_, err := NewChain(s1, s2).Scrape(context.Background(), "https://news.example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scrapers failed")
	assert.Contains(t, err.Error(), "b failed")
}

func TestChain_Scrape_NoScrapers(t *testing.T) {
	_, err := NewChain().Scrape(context.Background(), "https://news.example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scraper produced content")
}

func TestChain_Scrape_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s1 := &mockScraper{name: "a", err: context.Canceled}
	s2 := &mockScraper{name: "b", result: &Result{Source: "b"}}

	_, err := NewChain(s1, s2).Scrape(ctx, "https://news.example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.Equal(t, 0, s2.calls)
}

func TestChain_Extract(t *testing.T) {
	s := &mockScraper{
		name:   "primary",
		result: &Result{Page: Page{Title: "Senate passes bill", Text: "Body text"}, Source: "primary"},
	}

	title, body, err := NewChain(s).Extract(context.Background(), "https://news.example.com")

	require.NoError(t, err)
	assert.Equal(t, "Senate passes bill", title)
	assert.Equal(t, "Body text", body)
}

func TestChain_Extract_Error(t *testing.T) {
	s := &mockScraper{name: "primary", err: errors.New("boom")}

	title, body, err := NewChain(s).Extract(context.Background(), "https://news.example.com")

	require.Error(t, err)
	assert.Empty(t, title)
	assert.Empty(t, body)
}
