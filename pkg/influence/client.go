// Package influence provides a client for the Influence Explorer contextualize
// API, which recognizes people and organizations in free text and returns
// their campaign finance and lobbying summaries.
package influence

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the entity recognition operations.
type Client interface {
	// Contextualize submits text and returns the recognized matches in the
	// order the service reports them.
	Contextualize(ctx context.Context, text string) ([]Match, error)
}

// ContextualizeResponse is the parsed contextualize API response.
type ContextualizeResponse struct {
	Entities []Match `json:"entities"`
}

// Match is one recognized entity together with the surface strings in the
// text that referred to it.
type Match struct {
	MatchedText []string   `json:"matched_text"`
	EntityData  EntityData `json:"entity_data"`
}

// EntityData describes the recognized entity. CampaignFinance and Lobbying
// are nil when the service has no data for the entity.
type EntityData struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            string           `json:"type"`
	Slug            string           `json:"slug"`
	CampaignFinance *CampaignFinance `json:"campaign_finance,omitempty"`
	Lobbying        *Lobbying        `json:"lobbying,omitempty"`
}

// CampaignFinance holds contribution totals for an entity.
type CampaignFinance struct {
	RecipientBreakdown        *PartyBreakdown `json:"recipient_breakdown,omitempty"`
	ContributorTypeBreakdown  *TypeBreakdown  `json:"contributor_type_breakdown,omitempty"`
	ContributorLocalBreakdown *LocalBreakdown `json:"contributor_local_breakdown,omitempty"`
	TopIndustries             []Named         `json:"top_industries,omitempty"`
}

// PartyBreakdown splits money given by party of the recipient.
type PartyBreakdown struct {
	Dem Amount `json:"dem"`
	Rep Amount `json:"rep"`
}

// TypeBreakdown splits money received by contributor type.
type TypeBreakdown struct {
	PAC        Amount `json:"pac"`
	Individual Amount `json:"individual"`
}

// LocalBreakdown splits money received by contributor location.
type LocalBreakdown struct {
	InState    Amount `json:"in_state"`
	OutOfState Amount `json:"out_of_state"`
}

// Lobbying holds lobbying activity for an entity.
type Lobbying struct {
	Clients   []Named `json:"clients,omitempty"`
	TopIssues []Named `json:"top_issues,omitempty"`
}

// Named is any list item the API reports by name.
type Named struct {
	Name string `json:"name"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a contextualize client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "http://inbox.influenceexplorer.com",
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Contextualize(ctx context.Context, text string) ([]Match, error) {
	if c.apiKey == "" {
		return nil, eris.New("influence: api key is required")
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contextualize", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "influence: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "influence: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "influence: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("influence: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result ContextualizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "influence: unmarshal response")
	}

	return result.Entities, nil
}
