package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poligraft/internal/enrich"
	"github.com/sells-group/poligraft/internal/resilience"
	"github.com/sells-group/poligraft/internal/scrape"
	"github.com/sells-group/poligraft/internal/source"
	"github.com/sells-group/poligraft/internal/store"
	"github.com/sells-group/poligraft/pkg/firecrawl"
	"github.com/sells-group/poligraft/pkg/influence"
	"github.com/sells-group/poligraft/pkg/jina"
	"github.com/sells-group/poligraft/pkg/transparency"
)

// initStore opens the configured store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "poligraft.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// pipelineEnv holds the components shared by serve, run and worker.
type pipelineEnv struct {
	Creator   *enrich.Creator
	Processor *enrich.Processor
}

// initPipeline wires the API clients, extraction chain and enrichment
// stages around st.
func initPipeline(st store.Store) *pipelineEnv {
	timeout := cfg.Sunlight.Timeout()

	recognizer := influence.NewClient(cfg.Sunlight.APIKey,
		influence.WithBaseURL(cfg.Sunlight.ContextualizeBaseURL),
		influence.WithHTTPClient(newHTTPClient(timeout)),
	)
	summaries := transparency.NewClient(cfg.Sunlight.APIKey,
		transparency.WithBaseURL(cfg.Sunlight.TransparencyBaseURL),
		transparency.WithRateLimit(cfg.Linker.RequestsPerSecond, cfg.Linker.Burst),
	)

	scrapers := []scrape.Scraper{
		scrape.NewLocalScraper(scrape.LocalOptions{
			UserAgent:    cfg.Extract.UserAgent,
			Timeout:      time.Duration(cfg.Extract.TimeoutSecs) * time.Second,
			MaxBodyBytes: cfg.Extract.MaxBodyBytes,
		}),
		scrape.NewJinaAdapter(jina.NewClient(cfg.Extract.JinaKey, jina.WithBaseURL(cfg.Extract.JinaBaseURL))),
	}
	// Firecrawl is paid; only used when a key is configured.
	if cfg.Extract.FirecrawlKey != "" {
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(
			firecrawl.NewClient(cfg.Extract.FirecrawlKey, firecrawl.WithBaseURL(cfg.Extract.FirecrawlBaseURL)),
		))
	}
	extractor := scrape.NewChain(scrapers...)

	linker := enrich.NewLinker(summaries, st, enrich.LinkerConfig{
		MaxConcurrency: cfg.Linker.MaxConcurrency,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.Linker.RetryAttempts,
			OnRetry:     resilience.RetryLogger("transparency", "recipient_contributor_summary"),
		},
		Circuit: resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Linker.CircuitThreshold,
			ResetTimeout:     time.Duration(cfg.Linker.CircuitResetSecs) * time.Second,
			ShouldTrip:       resilience.IsTransient,
		},
	})

	return &pipelineEnv{
		Creator:   enrich.NewCreator(source.NewResolver(extractor), st, 0),
		Processor: enrich.NewProcessor(recognizer, linker, st),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
