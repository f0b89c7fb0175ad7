package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poligraft/internal/model"
)

// ErrNotFound is returned when no Result matches a lookup.
var ErrNotFound = eris.New("store: result not found")

// ResultFilter specifies criteria for listing results.
type ResultFilter struct {
	Processed    *bool     `json:"processed,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	CreatedAfter time.Time `json:"created_after,omitempty"`
	Limit        int       `json:"limit,omitempty"`
	Offset       int       `json:"offset,omitempty"`
}

// Store is the document store for Results. Entities are embedded in the
// Result and always written with it.
type Store interface {
	// CreateResult validates r, assigns its id and timestamps, and inserts
	// it. A blank required field or a taken slug yields a
	// *model.ValidationError.
	CreateResult(ctx context.Context, r *model.Result) error
	// SaveResult overwrites the stored document with r.
	SaveResult(ctx context.Context, r *model.Result) error
	GetResult(ctx context.Context, id string) (*model.Result, error)
	GetResultBySlug(ctx context.Context, slug string) (*model.Result, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(f ResultFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// prepareCreate validates r and stamps the fields the store owns.
func prepareCreate(r *model.Result, id string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func duplicateSlug() error {
	return &model.ValidationError{Field: "slug", Reason: "has already been taken"}
}

// now truncates to microseconds so timestamps survive a database round trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
