package ingest

import (
	"context"
	"iter"
	"sync"

	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/store"
)

type MockLLM struct {
	Response string
	Prompts  []string
	Err      error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockEmbedder struct {
	Vector []float32
	Err    error

	mu    sync.Mutex
	calls int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// flakyStore fails the first Failures writes with ErrUnavailable, then
// delegates to the wrapped store. Reads always delegate.
type flakyStore struct {
	inner    store.Store
	Failures int
	Writes   int
}

func (f *flakyStore) failNext() bool {
	f.Writes++
	if f.Failures > 0 {
		f.Failures--
		return true
	}
	return false
}

func (f *flakyStore) CreateEntity(ctx context.Context, e model.Entity) (bool, error) {
	if f.failNext() {
		return false, store.ErrUnavailable
	}
	return f.inner.CreateEntity(ctx, e)
}

func (f *flakyStore) CreateRelationship(ctx context.Context, r model.Relationship) (bool, error) {
	if f.failNext() {
		return false, store.ErrUnavailable
	}
	return f.inner.CreateRelationship(ctx, r)
}

func (f *flakyStore) UpdateDescription(ctx context.Context, id, description string) error {
	if f.failNext() {
		return store.ErrUnavailable
	}
	return f.inner.UpdateDescription(ctx, id, description)
}

func (f *flakyStore) EntityExists(ctx context.Context, id string, typ model.EntityType) (bool, error) {
	return f.inner.EntityExists(ctx, id, typ)
}

func (f *flakyStore) GetEntity(ctx context.Context, id string) (model.Entity, bool, error) {
	return f.inner.GetEntity(ctx, id)
}

func (f *flakyStore) EntitiesByType(ctx context.Context, typ model.EntityType) ([]model.Entity, error) {
	return f.inner.EntitiesByType(ctx, typ)
}

func (f *flakyStore) Neighbors(ctx context.Context, entityID string, rel model.RelationType, dir store.Direction) ([]store.Neighbor, error) {
	return f.inner.Neighbors(ctx, entityID, rel, dir)
}

func (f *flakyStore) ShortestPaths(ctx context.Context, sourceID, targetID string, maxHops int) iter.Seq2[model.Path, error] {
	return f.inner.ShortestPaths(ctx, sourceID, targetID, maxHops)
}

func (f *flakyStore) PathsToType(ctx context.Context, seedID string, typ model.EntityType, maxHops int) iter.Seq2[model.Path, error] {
	return f.inner.PathsToType(ctx, seedID, typ, maxHops)
}
