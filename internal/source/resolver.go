// Package source turns a submission into the canonical source text, title
// and format of a Result.
package source

import (
	"context"
	"strings"

	"github.com/sells-group/poligraft/internal/model"
)

// titleRunes is how much of a plain-text submission becomes its title.
const titleRunes = 31

// Extractor fetches the title and readable body of a URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (title, body string, err error)
}

// Input is the raw submission.
type Input struct {
	URL  string
	Text string
}

// Resolved is the canonical source of a Result.
type Resolved struct {
	Text   string
	Title  string
	Format model.SourceFormat
}

// Resolver picks between the submitted text and the content behind the
// submitted URL.
type Resolver struct {
	extractor Extractor
}

// NewResolver creates a Resolver. The extractor may be nil when only text
// submissions are accepted.
func NewResolver(extractor Extractor) *Resolver {
	return &Resolver{extractor: extractor}
}

// Resolve returns the canonical source. Non-blank text wins over URL. Without
// either a ValidationError is returned; a failed extraction returns a
// FetchError.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*Resolved, error) {
	if strings.TrimSpace(in.Text) != "" {
		return &Resolved{
			Text:   in.Text,
			Title:  PlainTextTitle(in.Text),
			Format: model.FormatPlainText,
		}, nil
	}

	if strings.TrimSpace(in.URL) == "" {
		return nil, &model.ValidationError{Field: "source", Reason: "must set source or text"}
	}
	if r.extractor == nil {
		return nil, &model.FetchError{URL: in.URL, Err: errNoExtractor}
	}

	title, body, err := r.extractor.Extract(ctx, in.URL)
	if err != nil {
		return nil, &model.FetchError{URL: in.URL, Err: err}
	}
	return &Resolved{
		Text:   body,
		Title:  title,
		Format: model.FormatHTML,
	}, nil
}

// PlainTextTitle is the leading text followed by an ellipsis.
func PlainTextTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleRunes {
		runes = runes[:titleRunes]
	}
	return string(runes) + "..."
}
