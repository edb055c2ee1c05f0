package core

import (
	"context"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/config"
	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/core/resolve"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/store"
)

type MockEmbedder struct {
	Vector []float32
	Err    error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

// downStore fails every operation as unavailable.
type downStore struct{}

func (downStore) EntityExists(ctx context.Context, id string, typ model.EntityType) (bool, error) {
	return false, store.ErrUnavailable
}
func (downStore) CreateEntity(ctx context.Context, e model.Entity) (bool, error) {
	return false, store.ErrUnavailable
}
func (downStore) UpdateDescription(ctx context.Context, id, description string) error {
	return store.ErrUnavailable
}
func (downStore) GetEntity(ctx context.Context, id string) (model.Entity, bool, error) {
	return model.Entity{}, false, store.ErrUnavailable
}
func (downStore) EntitiesByType(ctx context.Context, typ model.EntityType) ([]model.Entity, error) {
	return nil, store.ErrUnavailable
}
func (downStore) CreateRelationship(ctx context.Context, r model.Relationship) (bool, error) {
	return false, store.ErrUnavailable
}
func (downStore) Neighbors(ctx context.Context, entityID string, rel model.RelationType, dir store.Direction) ([]store.Neighbor, error) {
	return nil, store.ErrUnavailable
}
func (downStore) ShortestPaths(ctx context.Context, sourceID, targetID string, maxHops int) iter.Seq2[model.Path, error] {
	return func(yield func(model.Path, error) bool) {
		yield(model.Path{}, store.ErrUnavailable)
	}
}
func (downStore) PathsToType(ctx context.Context, seedID string, typ model.EntityType, maxHops int) iter.Seq2[model.Path, error] {
	return func(yield func(model.Path, error) bool) {
		yield(model.Path{}, store.ErrUnavailable)
	}
}

// downIndex fails every operation as unavailable.
type downIndex struct{}

func (downIndex) UpsertChunk(ctx context.Context, c model.Chunk) error {
	return index.ErrUnavailable
}
func (downIndex) GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error) {
	return model.Chunk{}, false, index.ErrUnavailable
}
func (downIndex) BindDocument(ctx context.Context, documentID, candidateID string) error {
	return index.ErrUnavailable
}
func (downIndex) OwnerOf(ctx context.Context, documentID string) (string, bool, error) {
	return "", false, index.ErrUnavailable
}
func (downIndex) SimilaritySearch(ctx context.Context, vector []float32, k int, filter *index.Filter) ([]index.Hit, error) {
	return nil, index.ErrUnavailable
}

// testGraph builds the reference fixture used across executor and engine
// tests: three candidates with overlapping skills and one profile.
func testGraph(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	entities := []model.Entity{
		{ID: "kubernetes", Type: model.TypeSkill, DisplayName: "Kubernetes"},
		{ID: "aws", Type: model.TypeSkill, DisplayName: "AWS"},
		{ID: "python", Type: model.TypeSkill, DisplayName: "Python"},
		{ID: "terraform", Type: model.TypeSkill, DisplayName: "Terraform"},
		{ID: "cloud_architect", Type: model.TypeProfile, DisplayName: "Cloud Architect"},
		{ID: "senior", Type: model.TypeExperienceLevel, DisplayName: "senior"},
		{ID: "cv_013", Type: model.TypeCandidate, DisplayName: "cv_013"},
		{ID: "cv_047", Type: model.TypeCandidate, DisplayName: "cv_047"},
		{ID: "cv_099", Type: model.TypeCandidate, DisplayName: "cv_099"},
	}
	for _, e := range entities {
		_, err := s.CreateEntity(ctx, e)
		require.NoError(t, err)
	}

	rels := []model.Relationship{
		{SourceID: "cv_013", TargetID: "kubernetes", Relation: model.RelHasSkill},
		{SourceID: "cv_013", TargetID: "aws", Relation: model.RelHasSkill},
		{SourceID: "cv_013", TargetID: "terraform", Relation: model.RelHasSkill},
		{SourceID: "cv_013", TargetID: "cloud_architect", Relation: model.RelHasProfile},
		{SourceID: "cv_013", TargetID: "senior", Relation: model.RelHasExperienceLevel},

		{SourceID: "cv_047", TargetID: "kubernetes", Relation: model.RelHasSkill},
		{SourceID: "cv_047", TargetID: "python", Relation: model.RelHasSkill},

		{SourceID: "cv_099", TargetID: "python", Relation: model.RelHasSkill},

		{SourceID: "cloud_architect", TargetID: "kubernetes", Relation: model.RelRequiresSkill},
		{SourceID: "cloud_architect", TargetID: "aws", Relation: model.RelRequiresSkill},
	}
	for _, r := range rels {
		_, err := s.CreateRelationship(ctx, r)
		require.NoError(t, err)
	}
	return s
}

// testIndex binds one document per candidate with a single chunk each.
// Embeddings are laid out so cv_013's chunk is closest to the unit query
// vector, then cv_047's, then cv_099's.
func testIndex(t *testing.T) *index.MemoryIndex {
	t.Helper()
	ix := index.NewMemoryIndex()
	ctx := context.Background()

	chunks := []struct {
		chunk model.Chunk
		owner string
	}{
		{model.Chunk{ID: "c13", DocumentID: "doc_013", Content: "Designed AWS platforms with Kubernetes and Terraform.", Embedding: []float32{1, 0}}, "cv_013"},
		{model.Chunk{ID: "c47", DocumentID: "doc_047", Content: "Ran Kubernetes clusters, wrote Python tooling.", Embedding: []float32{0.8, 0.6}}, "cv_047"},
		{model.Chunk{ID: "c99", DocumentID: "doc_099", Content: "Python data pipelines.", Embedding: []float32{0, 1}}, "cv_099"},
	}
	for _, c := range chunks {
		require.NoError(t, ix.UpsertChunk(ctx, c.chunk))
		require.NoError(t, ix.BindDocument(ctx, c.chunk.DocumentID, c.owner))
	}
	return ix
}

func testResolver(s store.Store) *resolve.Resolver {
	return resolve.NewResolver(s, config.ResolveConfig{
		Aliases:        map[string]string{"K8s": "Kubernetes"},
		FuzzyThreshold: 0.5,
	})
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	s := testGraph(t)
	ix := testIndex(t)
	emb := &MockEmbedder{Vector: []float32{1, 0}}
	return NewEngine(s, ix, emb, testResolver(s), DefaultTuning(), zap.NewNop())
}

var errBoom = fmt.Errorf("boom")
