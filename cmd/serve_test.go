package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/store"
)

type recordingDispatcher struct {
	ids []string
	err error
}

func (d *recordingDispatcher) Enqueue(_ context.Context, id string) error {
	if d.err != nil {
		return d.err
	}
	d.ids = append(d.ids, id)
	return nil
}

func seedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	for _, r := range []model.Result{
		{Slug: "aaaa", Processed: false},
		{Slug: "bbbb", Processed: true},
		{Slug: "cccc", Processed: false},
	} {
		r.SourceTitle = "title"
		r.SourceText = "text"
		r.SourceFormat = model.FormatPlainText
		r.SourceHash = "hash"
		r.Status = model.StatusTextPlucked
		require.NoError(t, st.CreateResult(ctx, &r))
	}
	return st
}

func TestRequeuePending_EnqueuesUnprocessed(t *testing.T) {
	st := seedStore(t)
	d := &recordingDispatcher{}

	n := requeuePending(context.Background(), st, d)

	assert.Equal(t, 2, n)
	assert.Len(t, d.ids, 2)
}

func TestRequeuePending_EnqueueErrors(t *testing.T) {
	st := seedStore(t)
	d := &recordingDispatcher{err: errors.New("queue closed")}

	assert.Equal(t, 0, requeuePending(context.Background(), st, d))
}
