package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/talentgraph/internal/core/model"
)

func seedGraph(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()

	entities := []model.Entity{
		{ID: "kubernetes", Type: model.TypeSkill, DisplayName: "Kubernetes"},
		{ID: "aws", Type: model.TypeSkill, DisplayName: "AWS"},
		{ID: "cloud_architect", Type: model.TypeProfile, DisplayName: "Cloud Architect"},
		{ID: "cv_013", Type: model.TypeCandidate, DisplayName: "cv_013"},
		{ID: "cv_047", Type: model.TypeCandidate, DisplayName: "cv_047"},
	}
	for _, e := range entities {
		created, err := s.CreateEntity(ctx, e)
		require.NoError(t, err)
		require.True(t, created)
	}

	rels := []model.Relationship{
		{SourceID: "cv_013", TargetID: "kubernetes", Relation: model.RelHasSkill},
		{SourceID: "cv_013", TargetID: "cloud_architect", Relation: model.RelHasProfile},
		{SourceID: "cv_047", TargetID: "aws", Relation: model.RelHasSkill},
		{SourceID: "cloud_architect", TargetID: "kubernetes", Relation: model.RelRequiresSkill},
	}
	for _, r := range rels {
		created, err := s.CreateRelationship(ctx, r)
		require.NoError(t, err)
		require.True(t, created)
	}
	return s
}

func TestCreateEntityIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := model.Entity{ID: "golang", Type: model.TypeSkill, DisplayName: "Go"}
	created, err := s.CreateEntity(ctx, e)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateEntity(ctx, e)
	require.NoError(t, err)
	assert.False(t, created)

	got, ok, err := s.GetEntity(ctx, "golang")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Go", got.DisplayName)
}

func TestCreateEntityTypeConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.CreateEntity(ctx, model.Entity{ID: "x", Type: model.TypeSkill})
	require.NoError(t, err)

	_, err = s.CreateEntity(ctx, model.Entity{ID: "x", Type: model.TypeCandidate})
	assert.ErrorIs(t, err, ErrEntityConflict)
}

func TestCreateEntityValidates(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.CreateEntity(context.Background(), model.Entity{ID: "", Type: model.TypeSkill})
	assert.Error(t, err)

	_, err = s.CreateEntity(context.Background(), model.Entity{ID: "y", Type: "NOT_A_TYPE"})
	assert.Error(t, err)
}

func TestEntityExistsChecksType(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	ok, err := s.EntityExists(ctx, "kubernetes", model.TypeSkill)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.EntityExists(ctx, "kubernetes", model.TypeCandidate)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.EntityExists(ctx, "missing", model.TypeSkill)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateDescription(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateDescription(ctx, "cv_013", "ten years of platform work"))
	e, ok, err := s.GetEntity(ctx, "cv_013")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ten years of platform work", e.Description)

	assert.Error(t, s.UpdateDescription(ctx, "missing", "x"))
}

func TestCreateRelationshipRequiresEndpoints(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	_, err := s.CreateRelationship(ctx, model.Relationship{
		SourceID: "cv_013", TargetID: "ghost", Relation: model.RelHasSkill,
	})
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = s.CreateRelationship(ctx, model.Relationship{
		SourceID: "ghost", TargetID: "kubernetes", Relation: model.RelHasSkill,
	})
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestCreateRelationshipIdempotent(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	r := model.Relationship{SourceID: "cv_013", TargetID: "kubernetes", Relation: model.RelHasSkill}
	created, err := s.CreateRelationship(ctx, r)
	require.NoError(t, err)
	assert.False(t, created) // already seeded

	// Same endpoints, different relation is a distinct edge.
	created, err = s.CreateRelationship(ctx, model.Relationship{
		SourceID: "cv_013", TargetID: "kubernetes", Relation: model.RelMentions,
	})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestNeighborsDirections(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	out, err := s.Neighbors(ctx, "cv_013", "", Outgoing)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{
		{Relation: model.RelHasSkill, EntityID: "kubernetes"},
		{Relation: model.RelHasProfile, EntityID: "cloud_architect"},
	}, out)

	in, err := s.Neighbors(ctx, "kubernetes", "", Incoming)
	require.NoError(t, err)
	assert.Len(t, in, 2)

	filtered, err := s.Neighbors(ctx, "kubernetes", model.RelRequiresSkill, Both)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{Relation: model.RelRequiresSkill, EntityID: "cloud_architect"}}, filtered)
}

func collectPaths(t *testing.T, seq func(func(model.Path, error) bool)) []model.Path {
	t.Helper()
	var out []model.Path
	for p, err := range seq {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestPathsToTypeHopAscending(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	// From kubernetes: cv_013 at 1 hop, and at 2 hops via cloud_architect.
	paths := collectPaths(t, s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3))
	require.NotEmpty(t, paths)

	prev := 0
	for _, p := range paths {
		assert.GreaterOrEqual(t, p.Hops(), prev)
		prev = p.Hops()
	}
	assert.Equal(t, 1, paths[0].Hops())
	assert.Equal(t, model.PathStep{SourceID: "cv_013", Relation: model.RelHasSkill, TargetID: "kubernetes"}, paths[0].Steps[0])
}

func TestPathsToTypeThroughMatchingNode(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, e := range []model.Entity{
		{ID: "kubernetes", Type: model.TypeSkill, DisplayName: "Kubernetes"},
		{ID: "python", Type: model.TypeSkill, DisplayName: "Python"},
		{ID: "cv_047", Type: model.TypeCandidate, DisplayName: "cv_047"},
		{ID: "cv_099", Type: model.TypeCandidate, DisplayName: "cv_099"},
	} {
		created, err := s.CreateEntity(ctx, e)
		require.NoError(t, err)
		require.True(t, created)
	}
	for _, r := range []model.Relationship{
		{SourceID: "cv_047", TargetID: "kubernetes", Relation: model.RelHasSkill},
		{SourceID: "cv_047", TargetID: "python", Relation: model.RelHasSkill},
		{SourceID: "cv_099", TargetID: "python", Relation: model.RelHasSkill},
	} {
		created, err := s.CreateRelationship(ctx, r)
		require.NoError(t, err)
		require.True(t, created)
	}

	// cv_099 sits behind cv_047, itself a candidate; the walk must
	// pass through cv_047 to find it.
	paths := collectPaths(t, s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3))
	require.NotEmpty(t, paths)
	assert.Equal(t, 1, paths[0].Hops())

	var found bool
	for _, p := range paths {
		last := p.Steps[len(p.Steps)-1]
		if p.Hops() == 3 && (last.SourceID == "cv_099" || last.TargetID == "cv_099") {
			found = true
		}
	}
	assert.True(t, found, "candidate behind another candidate not reached")
}

func TestPathsToTypeDeterministic(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	first := collectPaths(t, s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3))
	second := collectPaths(t, s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3))
	assert.Equal(t, first, second)
}

func TestPathsToTypeMaxHops(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	// cv_047 is only reachable from kubernetes through cv_013 and aws,
	// which needs more hops than the bound allows.
	paths := collectPaths(t, s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 1))
	require.Len(t, paths, 1)
	assert.Equal(t, 1, paths[0].Hops())
}

func TestPathsToTypeUnknownSeed(t *testing.T) {
	s := seedGraph(t)
	paths := collectPaths(t, s.PathsToType(context.Background(), "missing", model.TypeCandidate, 3))
	assert.Empty(t, paths)
}

func TestPathsEarlyStop(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	count := 0
	for _, err := range s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestShortestPaths(t *testing.T) {
	s := seedGraph(t)
	ctx := context.Background()

	paths := collectPaths(t, s.ShortestPaths(ctx, "cv_013", "kubernetes", 3))
	require.NotEmpty(t, paths)
	assert.Equal(t, 1, paths[0].Hops())
	assert.Equal(t, "kubernetes", paths[0].End())
}

func TestPathsCancelledContext(t *testing.T) {
	s := seedGraph(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr bool
	for _, err := range s.PathsToType(ctx, "kubernetes", model.TypeCandidate, 3) {
		if err != nil {
			sawErr = true
			assert.ErrorIs(t, err, context.Canceled)
		}
	}
	assert.True(t, sawErr)
}

func TestEntitiesByType(t *testing.T) {
	s := seedGraph(t)
	skills, err := s.EntitiesByType(context.Background(), model.TypeSkill)
	require.NoError(t, err)
	assert.Len(t, skills, 2)
}

func TestPathWeight(t *testing.T) {
	p := model.Path{Steps: []model.PathStep{{SourceID: "a", Relation: model.RelHasSkill, TargetID: "b"}}}
	assert.InDelta(t, 0.5, p.Weight(), 1e-9)

	p.Steps = append(p.Steps, model.PathStep{SourceID: "b", Relation: model.RelHasSkill, TargetID: "c"})
	assert.InDelta(t, 1.0/3.0, p.Weight(), 1e-9)
}
