// Package enrich runs the entity pipeline for a Result: recognition,
// normalization and contributor linking.
package enrich

import (
	"context"

	"github.com/sells-group/poligraft/internal/model"
)

// ResultSaver persists a Result document.
type ResultSaver interface {
	SaveResult(ctx context.Context, r *model.Result) error
}

// ResultStore loads and persists Result documents.
type ResultStore interface {
	ResultSaver
	GetResult(ctx context.Context, id string) (*model.Result, error)
}
