package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/pkg/influence"
)

// Processor drives one Result through recognition, normalization and
// linking.
type Processor struct {
	recognizer influence.Client
	linker     *Linker
	store      ResultStore
}

// NewProcessor creates a Processor.
func NewProcessor(recognizer influence.Client, linker *Linker, store ResultStore) *Processor {
	return &Processor{recognizer: recognizer, linker: linker, store: store}
}

// ProcessID loads a Result and processes it. A Result that is already
// processed is left alone unless force is set.
func (p *Processor) ProcessID(ctx context.Context, id string, force bool) error {
	r, err := p.store.GetResult(ctx, id)
	if err != nil {
		return eris.Wrapf(err, "enrich: load result %s", id)
	}
	if r.Processed && !force {
		zap.L().Info("enrich: result already processed, skipping",
			zap.String("result_id", id),
			zap.String("slug", r.Slug),
		)
		return nil
	}
	return p.Process(ctx, r)
}

// Process runs the pipeline on r. A recognizer failure returns a
// *model.RecognitionError and leaves the stored Result untouched. An empty
// recognition is a no-op apart from text suppression. Each run replaces the
// entities and contribution count of any earlier run.
func (p *Processor) Process(ctx context.Context, r *model.Result) error {
	log := zap.L().With(zap.String("result_id", r.ID), zap.String("slug", r.Slug))

	matches, err := p.recognizer.Contextualize(ctx, r.SourceContent())
	if err != nil {
		log.Error("enrich: recognition failed", zap.Error(err))
		return &model.RecognitionError{Err: err}
	}

	if len(matches) == 0 {
		log.Info("enrich: no entities recognized")
		if r.SuppressText && r.SourceText != "" {
			r.SourceText = ""
			return eris.Wrap(p.store.SaveResult(ctx, r), "enrich: save suppressed text")
		}
		return nil
	}

	r.ResetEnrichment()
	r.Entities = Normalize(matches)
	r.Status = model.StatusEntitiesLinked
	if err := p.store.SaveResult(ctx, r); err != nil {
		return eris.Wrap(err, "enrich: save entities")
	}
	log.Info("enrich: entities linked",
		zap.Int("matches", len(matches)),
		zap.Int("entities", len(r.Entities)),
	)

	if err := p.linker.Link(ctx, r); err != nil {
		return err
	}

	if r.SuppressText {
		r.SourceText = ""
	}
	if err := p.store.SaveResult(ctx, r); err != nil {
		return eris.Wrap(err, "enrich: save contributors")
	}
	log.Info("enrich: contributors identified", zap.Int("contribution_count", r.ContributionCount))
	return nil
}
