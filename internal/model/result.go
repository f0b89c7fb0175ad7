package model

import (
	"time"
)

// Status is the coarse pipeline stage label stored on a Result.
type Status string

const (
	StatusTextPlucked            Status = "Text Plucked"
	StatusEntitiesLinked         Status = "Entities Linked"
	StatusContributorsIdentified Status = "Contributors Identified"
)

// SourceFormat describes where the source text came from.
type SourceFormat string

const (
	FormatPlainText SourceFormat = "plain_text"
	FormatHTML      SourceFormat = "html"
)

// PoliticianType is the recognizer type tag for political recipients.
const PoliticianType = "politician"

// Result is the persisted root document for one submission.
type Result struct {
	ID                string       `json:"id" yaml:"id"`
	SourceURL         string       `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	SourceTitle       string       `json:"source_title" yaml:"source_title"`
	SourceText        string       `json:"source_text" yaml:"source_text"`
	SourceFormat      SourceFormat `json:"source_format" yaml:"source_format"`
	SourceHash        string       `json:"source_hash" yaml:"source_hash"`
	Slug              string       `json:"slug" yaml:"slug"`
	Status            Status       `json:"status" yaml:"status"`
	ContributionCount int          `json:"contribution_count" yaml:"contribution_count"`
	Processed         bool         `json:"processed" yaml:"processed"`
	SuppressText      bool         `json:"suppress_text" yaml:"suppress_text"`
	Entities          []Entity     `json:"entities" yaml:"entities"`
	CreatedAt         time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" yaml:"updated_at"`
}

// SourceContent returns the source text. It exists so the presentation
// layer can expose the text under a name that is independent of storage.
func (r *Result) SourceContent() string {
	return r.SourceText
}

// Validate checks the fields that must be present before a Result is stored.
func (r *Result) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"source_title", r.SourceTitle},
		{"source_text", r.SourceText},
		{"source_format", string(r.SourceFormat)},
		{"slug", r.Slug},
		{"source_hash", r.SourceHash},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Field: f.field, Reason: "can't be blank"}
		}
	}
	return nil
}

// Recipients returns the indexes of politician entities in stored order.
func (r *Result) Recipients() []int {
	var idx []int
	for i := range r.Entities {
		if r.Entities[i].IsPolitician() {
			idx = append(idx, i)
		}
	}
	return idx
}

// ResetEnrichment clears everything a pipeline run produces so a run can
// start from recognition without duplicating entities.
func (r *Result) ResetEnrichment() {
	r.Entities = nil
	r.ContributionCount = 0
	r.Processed = false
}
