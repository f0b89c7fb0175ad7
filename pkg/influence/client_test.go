package influence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smithAcmeResponse = `{
  "entities": [
    {
      "matched_text": ["Smith", "senator smith"],
      "entity_data": {
        "id": "smith-1",
        "name": "John Smith",
        "type": "politician",
        "slug": "john-smith",
        "campaign_finance": {
          "contributor_type_breakdown": {"pac": "250.00", "individual": 750},
          "contributor_local_breakdown": {"in_state": 600, "out_of_state": 400},
          "top_industries": [{"name": "Lawyers/Law Firms"}, {"name": "Other"}]
        }
      }
    },
    {
      "matched_text": ["Acme Corp"],
      "entity_data": {
        "id": "acme-1",
        "name": "Acme Corp",
        "type": "organization",
        "slug": "acme-corp",
        "campaign_finance": {"recipient_breakdown": {"dem": "300", "rep": null}},
        "lobbying": {"clients": [{"name": "Acme Holdings"}], "top_issues": [{"name": "Taxes"}]}
      }
    }
  ]
}`

func TestContextualize_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contextualize", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "test-key", r.PostForm.Get("apikey"))
		assert.Equal(t, "Senator Smith met with Acme Corp.", r.PostForm.Get("text"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(smithAcmeResponse))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Contextualize(context.Background(), "Senator Smith met with Acme Corp.")
	require.NoError(t, err)
	require.Len(t, got, 2)

	smith := got[0]
	assert.Equal(t, []string{"Smith", "senator smith"}, smith.MatchedText)
	assert.Equal(t, "politician", smith.EntityData.Type)
	require.NotNil(t, smith.EntityData.CampaignFinance)
	assert.Nil(t, smith.EntityData.CampaignFinance.RecipientBreakdown)
	assert.Equal(t, Amount(250), smith.EntityData.CampaignFinance.ContributorTypeBreakdown.PAC)
	assert.Equal(t, Amount(750), smith.EntityData.CampaignFinance.ContributorTypeBreakdown.Individual)
	assert.Nil(t, smith.EntityData.Lobbying)

	acme := got[1]
	assert.Equal(t, "acme-1", acme.EntityData.ID)
	assert.Equal(t, Amount(300), acme.EntityData.CampaignFinance.RecipientBreakdown.Dem)
	assert.Equal(t, Amount(0), acme.EntityData.CampaignFinance.RecipientBreakdown.Rep)
	assert.Equal(t, "Taxes", acme.EntityData.Lobbying.TopIssues[0].Name)
}

func TestContextualize_EmptyEntities(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ContextualizeResponse{})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Contextualize(context.Background(), "nothing to see")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContextualize_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`bad key`))
	}))
	defer srv.Close()

	client := NewClient("wrong", WithBaseURL(srv.URL))
	_, err := client.Contextualize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestContextualize_MissingKey(t *testing.T) {
	t.Parallel()

	client := NewClient("")
	_, err := client.Contextualize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestContextualize_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Contextualize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Amount
	}{
		{"number", `12.5`, 12.5},
		{"string", `"40.25"`, 40.25},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a)
		})
	}

	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
}
