package enrich

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/slug"
	"github.com/sells-group/poligraft/internal/source"
)

// slugCreateAttempts bounds inserts that lose a race for a fresh slug.
const slugCreateAttempts = 3

// ResultCreator inserts new Result documents.
type ResultCreator interface {
	slug.Checker
	ResultSaver
	CreateResult(ctx context.Context, r *model.Result) error
}

// CreateInput is a submission.
type CreateInput struct {
	URL          string
	Text         string
	SuppressText bool
	// TextOnly stores the submission as processed without running the
	// pipeline.
	TextOnly bool
}

// Creator turns submissions into stored Results.
type Creator struct {
	resolver        *source.Resolver
	store           ResultCreator
	maxSlugAttempts int
}

// NewCreator creates a Creator. maxSlugAttempts bounds slug regeneration;
// zero uses slug.DefaultMaxAttempts.
func NewCreator(resolver *source.Resolver, store ResultCreator, maxSlugAttempts int) *Creator {
	return &Creator{resolver: resolver, store: store, maxSlugAttempts: maxSlugAttempts}
}

// Create resolves the source, assigns a slug and content hash, and stores a
// new Result in the Text Plucked state. Validation failures return a
// *model.ValidationError and extraction failures a *model.FetchError; in
// both cases nothing is stored.
func (c *Creator) Create(ctx context.Context, in CreateInput) (*model.Result, error) {
	src, err := c.resolver.Resolve(ctx, source.Input{URL: in.URL, Text: in.Text})
	if err != nil {
		return nil, err
	}

	r := &model.Result{
		SourceURL:    in.URL,
		SourceTitle:  src.Title,
		SourceText:   src.Text,
		SourceFormat: src.Format,
		Status:       model.StatusTextPlucked,
		SuppressText: in.SuppressText,
		Processed:    in.TextOnly,
	}
	if content := r.SourceContent(); content != "" {
		r.SourceHash = ContentHash(content)
	}

	for attempt := 1; ; attempt++ {
		s, err := slug.Assign(ctx, c.store, c.maxSlugAttempts)
		if err != nil {
			return nil, eris.Wrap(err, "enrich: assign slug")
		}
		r.Slug = s

		err = c.store.CreateResult(ctx, r)
		if err == nil {
			break
		}
		var ve *model.ValidationError
		if errors.As(err, &ve) && ve.Field == "slug" && attempt < slugCreateAttempts {
			zap.L().Debug("enrich: slug taken on insert, regenerating", zap.String("slug", s))
			continue
		}
		return nil, err
	}

	// Text-only results never reach the processor, so suppression happens here.
	if in.TextOnly && in.SuppressText {
		r.SourceText = ""
		if err := c.store.SaveResult(ctx, r); err != nil {
			return nil, eris.Wrap(err, "enrich: save suppressed text")
		}
	}

	zap.L().Info("enrich: result created",
		zap.String("result_id", r.ID),
		zap.String("slug", r.Slug),
		zap.String("source_format", string(r.SourceFormat)),
		zap.Bool("text_only", in.TextOnly),
	)
	return r, nil
}

// ContentHash is the hex MD5 digest of the source content.
func ContentHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
