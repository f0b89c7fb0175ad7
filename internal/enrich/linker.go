package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/resilience"
	"github.com/sells-group/poligraft/pkg/transparency"
)

// LinkerConfig bounds the contribution lookups of one run.
type LinkerConfig struct {
	// MaxConcurrency is the number of lookups in flight per Result. Default: 1.
	MaxConcurrency int
	Retry          resilience.RetryConfig
	Circuit        resilience.CircuitBreakerConfig
}

// Linker finds the contributions each politician in a Result received from
// the other entities in the same Result.
type Linker struct {
	summaries transparency.Client
	store     ResultSaver
	cfg       LinkerConfig
}

// NewLinker creates a Linker.
func NewLinker(summaries transparency.Client, store ResultSaver, cfg LinkerConfig) *Linker {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Linker{summaries: summaries, store: store, cfg: cfg}
}

type lookupOutcome struct {
	summary *transparency.Summary
	err     error
}

// Link looks up every recipient and candidate contributor pair, appends a
// Contributor for each positive amount and saves r after each recipient.
// Failed lookups are logged and skipped. On return r is marked
// Contributors Identified and processed; the caller performs the final save.
func (l *Linker) Link(ctx context.Context, r *model.Result) error {
	log := zap.L().With(zap.String("result_id", r.ID), zap.String("slug", r.Slug))
	breaker := resilience.NewCircuitBreaker(l.cfg.Circuit)

	var candidates []int
	for i := range r.Entities {
		if r.Entities[i].IsCandidateContributor() {
			candidates = append(candidates, i)
		}
	}

	for _, ri := range r.Recipients() {
		recipientID := r.Entities[ri].TdataID
		outcomes := make([]lookupOutcome, len(candidates))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.cfg.MaxConcurrency)
		for k, ci := range candidates {
			contributorID := r.Entities[ci].TdataID
			g.Go(func() error {
				log.Info("enrich: lookup",
					zap.String("recipient", recipientID),
					zap.String("contributor", contributorID),
				)
				s, err := l.lookup(gctx, breaker, recipientID, contributorID)
				outcomes[k] = lookupOutcome{summary: s, err: err}
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "enrich: link cancelled")
		}

		recipient := &r.Entities[ri]
		for k, ci := range candidates {
			out := outcomes[k]
			contributor := r.Entities[ci]
			if out.err != nil {
				log.Warn("enrich: lookup failed, skipping", zap.Error(&model.LookupError{
					RecipientID:   recipientID,
					ContributorID: contributor.TdataID,
					Err:           out.err,
				}))
				continue
			}
			amount := out.summary.Amount.Int()
			if amount <= 0 {
				continue
			}
			recipient.Contributors = append(recipient.Contributors, model.Contributor{
				TdataName:    out.summary.ContributorName,
				MatchedNames: append([]string(nil), contributor.MatchedNames...),
				Amount:       amount,
				TdataID:      contributor.TdataID,
				TdataType:    contributor.TdataType,
				TdataSlug:    contributor.TdataSlug,
			})
			r.ContributionCount++
		}

		if err := l.store.SaveResult(ctx, r); err != nil {
			return eris.Wrapf(err, "enrich: save recipient %s", recipientID)
		}
	}

	r.Status = model.StatusContributorsIdentified
	r.Processed = true
	return nil
}

func (l *Linker) lookup(ctx context.Context, breaker *resilience.CircuitBreaker, recipientID, contributorID string) (*transparency.Summary, error) {
	s, err := resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) (*transparency.Summary, error) {
		retry := l.cfg.Retry
		if retry.OnRetry == nil {
			retry.OnRetry = resilience.RetryLogger("transparency", "recipient_contributor_summary")
		}
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (*transparency.Summary, error) {
			return l.summaries.RecipientContributorSummary(ctx, recipientID, contributorID)
		})
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, eris.New("enrich: empty summary")
	}
	return s, nil
}
