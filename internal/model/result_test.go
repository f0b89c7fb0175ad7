package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() *Result {
	return &Result{
		SourceTitle:  "Senator Smith met with Acme Co...",
		SourceText:   "Senator Smith met with Acme Corp.",
		SourceFormat: FormatPlainText,
		SourceHash:   "abc",
		Slug:         "aB3x",
	}
}

func TestResult_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(r *Result)
		field string
	}{
		{name: "valid", mod: func(*Result) {}},
		{name: "no title", mod: func(r *Result) { r.SourceTitle = "" }, field: "source_title"},
		{name: "no text", mod: func(r *Result) { r.SourceText = "" }, field: "source_text"},
		{name: "no format", mod: func(r *Result) { r.SourceFormat = "" }, field: "source_format"},
		{name: "no slug", mod: func(r *Result) { r.Slug = "" }, field: "slug"},
		{name: "no hash", mod: func(r *Result) { r.SourceHash = "" }, field: "source_hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mod(r)
			err := r.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, "can't be blank", ve.Reason)
		})
	}
}

func TestResult_Recipients(t *testing.T) {
	r := &Result{Entities: []Entity{
		{TdataName: "Acme", TdataType: "organization", TdataID: "acme-1"},
		{TdataName: "Smith", TdataType: PoliticianType, TdataID: "smith-1"},
		{TdataName: "Jones", TdataType: PoliticianType, TdataID: "jones-1"},
	}}
	assert.Equal(t, []int{1, 2}, r.Recipients())
	assert.Empty(t, (&Result{}).Recipients())
}

func TestEntity_IsCandidateContributor(t *testing.T) {
	assert.True(t, (&Entity{TdataID: "acme-1", TdataType: "organization"}).IsCandidateContributor())
	assert.False(t, (&Entity{TdataType: "organization"}).IsCandidateContributor())
	assert.False(t, (&Entity{TdataID: "smith-1", TdataType: PoliticianType}).IsCandidateContributor())
}

func TestResult_ResetEnrichment(t *testing.T) {
	r := validResult()
	r.Entities = []Entity{{TdataName: "Acme"}}
	r.ContributionCount = 3
	r.Processed = true
	r.Status = StatusContributorsIdentified

	r.ResetEnrichment()

	assert.Nil(t, r.Entities)
	assert.Zero(t, r.ContributionCount)
	assert.False(t, r.Processed)
	assert.Equal(t, StatusContributorsIdentified, r.Status)
}

func TestResult_View(t *testing.T) {
	r := validResult()
	v := r.View()
	require.NotNil(t, v.SourceContent)
	assert.Equal(t, r.SourceText, *v.SourceContent)
	assert.NotNil(t, v.Entities)

	r.SuppressText = true
	r.SourceText = ""
	v = r.View()
	assert.Nil(t, v.SourceContent)
	assert.Equal(t, r.SourceTitle, v.SourceTitle)
}

func TestErrors_Unwrap(t *testing.T) {
	base := errors.New("boom")

	var fe *FetchError
	require.True(t, errors.As(error(&FetchError{URL: "https://a.com", Err: base}), &fe))
	assert.ErrorIs(t, fe, base)
	assert.Contains(t, fe.Error(), "https://a.com")

	assert.ErrorIs(t, &RecognitionError{Err: base}, base)

	le := &LookupError{RecipientID: "smith-1", ContributorID: "acme-1", Err: base}
	assert.ErrorIs(t, le, base)
	assert.Equal(t, "lookup smith-1/acme-1: boom", le.Error())
}
