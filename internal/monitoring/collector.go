package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/store"
)

const pageSize = 500

// MetricsSnapshot holds a point-in-time view of pipeline health.
type MetricsSnapshot struct {
	// Result metrics (within lookback window).
	Total         int `json:"total" yaml:"total"`
	Processed     int `json:"processed" yaml:"processed"`
	Pending       int `json:"pending" yaml:"pending"`
	Stale         int `json:"stale" yaml:"stale"`
	Entities      int `json:"entities" yaml:"entities"`
	Politicians   int `json:"politicians" yaml:"politicians"`
	Contributions int `json:"contributions" yaml:"contributions"`

	// Status counts keyed by status string.
	ByStatus map[string]int `json:"by_status" yaml:"by_status"`

	// Queue depth, -1 when no queue is attached.
	QueueDepth int `json:"queue_depth" yaml:"queue_depth"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours" yaml:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at" yaml:"collected_at"`
}

// ResultLister abstracts the store method needed by the collector.
type ResultLister interface {
	ListResults(ctx context.Context, filter store.ResultFilter) ([]model.Result, error)
}

// QueueDepth reports how many results wait for processing.
type QueueDepth interface {
	Pending() int
}

// Collector gathers metrics from the store and queue.
type Collector struct {
	store ResultLister
	queue QueueDepth

	// StaleAfter marks unprocessed results older than this as stale.
	StaleAfter time.Duration
}

// NewCollector creates a new metrics collector. queue may be nil.
func NewCollector(st ResultLister, queue QueueDepth) *Collector {
	return &Collector{store: st, queue: queue, StaleAfter: 30 * time.Minute}
}

// Collect gathers a snapshot of metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := time.Now().UTC()
	snap := &MetricsSnapshot{
		ByStatus:      make(map[string]int),
		QueueDepth:    -1,
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	for offset := 0; ; offset += pageSize {
		results, err := c.store.ListResults(ctx, store.ResultFilter{
			CreatedAfter: cutoff,
			Limit:        pageSize,
			Offset:       offset,
		})
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: list results")
		}
		for i := range results {
			c.tally(snap, &results[i], now)
		}
		if len(results) < pageSize {
			break
		}
	}

	if c.queue != nil {
		snap.QueueDepth = c.queue.Pending()
	}
	return snap, nil
}

func (c *Collector) tally(snap *MetricsSnapshot, r *model.Result, now time.Time) {
	snap.Total++
	snap.ByStatus[string(r.Status)]++
	if r.Processed {
		snap.Processed++
	} else {
		snap.Pending++
		if c.StaleAfter > 0 && now.Sub(r.CreatedAt) > c.StaleAfter {
			snap.Stale++
		}
	}
	snap.Entities += len(r.Entities)
	for _, e := range r.Entities {
		if e.IsPolitician() {
			snap.Politicians++
		}
		snap.Contributions += len(e.Contributors)
	}
}
