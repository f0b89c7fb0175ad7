package model

import "time"

// ResultView is the public representation of a Result. The raw source text
// is never exposed; SourceContent carries it unless the submitter asked for
// the text to be suppressed.
type ResultView struct {
	ID                string       `json:"id" yaml:"id"`
	SourceURL         string       `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	SourceTitle       string       `json:"source_title" yaml:"source_title"`
	SourceContent     *string      `json:"source_content,omitempty" yaml:"source_content,omitempty"`
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

// View builds the public representation of r.
func (r *Result) View() ResultView {
	v := ResultView{
		ID:                r.ID,
		SourceURL:         r.SourceURL,
		SourceTitle:       r.SourceTitle,
		SourceFormat:      r.SourceFormat,
		SourceHash:        r.SourceHash,
		Slug:              r.Slug,
		Status:            r.Status,
		ContributionCount: r.ContributionCount,
		Processed:         r.Processed,
		SuppressText:      r.SuppressText,
		Entities:          r.Entities,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if v.Entities == nil {
		v.Entities = []Entity{}
	}
	if !r.SuppressText {
		content := r.SourceContent()
		v.SourceContent = &content
	}
	return v
}
