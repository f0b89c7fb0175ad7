package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/store"
)

// memStore is an in-memory document store that records every save.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]*model.Result
	saves   []model.Result
	saveErr error
	taken   map[string]bool
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]*model.Result{}, taken: map[string]bool{}}
}

func clone(r *model.Result) *model.Result {
	b, _ := json.Marshal(r)
	var out model.Result
	_ = json.Unmarshal(b, &out)
	return &out
}

func (m *memStore) CreateResult(_ context.Context, r *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := r.Validate(); err != nil {
		return err
	}
	if m.taken[r.Slug] {
		return &model.ValidationError{Field: "slug", Reason: "has already been taken"}
	}
	m.nextID++
	r.ID = fmt.Sprintf("id-%d", m.nextID)
	m.taken[r.Slug] = true
	m.docs[r.ID] = clone(r)
	return nil
}

func (m *memStore) SaveResult(_ context.Context, r *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.docs[r.ID]; !ok {
		return store.ErrNotFound
	}
	m.docs[r.ID] = clone(r)
	m.saves = append(m.saves, *clone(r))
	return nil
}

func (m *memStore) GetResult(_ context.Context, id string) (*model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(r), nil
}

func (m *memStore) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken[slug], nil
}

// seed stores r directly and returns its id.
func (m *memStore) seed(r *model.Result) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = fmt.Sprintf("id-%d", m.nextID)
	m.taken[r.Slug] = true
	m.docs[r.ID] = clone(r)
	return r.ID
}
