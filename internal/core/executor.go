package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/core/resolve"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/llm"
	"github.com/agenthands/talentgraph/internal/store"
)

// Executor runs the selected retrieval strategy. The vector and graph
// branches are independent I/O and execute concurrently; a single
// failed branch degrades the query to one signal, both failing fails it.
type Executor struct {
	Store    store.Store
	Index    index.Index
	Embedder llm.EmbedderClient
	Resolver *resolve.Resolver
	Logger   *zap.Logger
}

func NewExecutor(s store.Store, ix index.Index, emb llm.EmbedderClient, r *resolve.Resolver, logger *zap.Logger) *Executor {
	return &Executor{Store: s, Index: ix, Embedder: emb, Resolver: r, Logger: logger}
}

type vectorBranchResult struct {
	hits map[string][]model.VectorHit // candidate id -> hits
	err  error
}

type graphBranchResult struct {
	hits           map[string][]model.GraphHit // candidate id -> hits
	requiredSeeds  map[string]string
	preferredSeeds map[string]string
	profileSeed    string
	err            error
}

func (e *Executor) Execute(ctx context.Context, q model.Query, mode Mode, tn Tuning) (*model.RawResultSet, error) {
	useVector := mode == ModeDirect || mode == ModeHybrid
	useGraph := mode != ModeDirect

	vecCh := make(chan vectorBranchResult, 1)
	graphCh := make(chan graphBranchResult, 1)

	if useVector {
		go func() {
			hits, err := e.vectorBranch(ctx, q, tn)
			vecCh <- vectorBranchResult{hits: hits, err: err}
		}()
	}
	if useGraph {
		go func() {
			graphCh <- e.graphBranch(ctx, q, mode, tn)
		}()
	}

	raw := model.NewRawResultSet()
	executed, failed := 0, 0

	if useVector {
		res := <-vecCh
		executed++
		if res.err != nil {
			failed++
			raw.VectorDegraded = true
			e.Logger.Warn("vector branch failed, degrading to graph signal",
				zap.String("mode", mode.String()), zap.Error(res.err))
		} else {
			for candidateID, hits := range res.hits {
				raw.Signals(candidateID).VectorHits = hits
			}
		}
	}
	if useGraph {
		res := <-graphCh
		executed++
		if res.err != nil {
			failed++
			raw.GraphDegraded = true
			e.Logger.Warn("graph branch failed, degrading to vector signal",
				zap.String("mode", mode.String()), zap.Error(res.err))
		} else {
			for candidateID, hits := range res.hits {
				raw.Signals(candidateID).GraphHits = hits
			}
			raw.RequiredSeeds = res.requiredSeeds
			raw.PreferredSeeds = res.preferredSeeds
			raw.ProfileSeed = res.profileSeed
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if executed > 0 && failed == executed {
		return nil, fmt.Errorf("%w: all signal branches failed", ErrRetrievalUnavailable)
	}
	return raw, nil
}

// pseudoQueryText synthesizes an embedding query from structured
// criteria when no free text was given.
func pseudoQueryText(q model.Query) string {
	if q.FreeText != "" {
		return q.FreeText
	}

	var b strings.Builder
	b.WriteString("Find ")
	if q.ExperienceLevel != "" {
		b.WriteString(string(q.ExperienceLevel))
		b.WriteString(" ")
	}
	b.WriteString("candidates")
	if len(q.RequiredSkills) > 0 {
		b.WriteString(" with ")
		b.WriteString(strings.Join(q.RequiredSkills, " and "))
		b.WriteString(" experience")
	}
	if q.ProfileName != "" {
		b.WriteString(" matching ")
		b.WriteString(q.ProfileName)
		b.WriteString(" profile")
	}
	if len(q.PreferredSkills) > 0 {
		b.WriteString(". Preferred skills include ")
		b.WriteString(strings.Join(q.PreferredSkills, ", "))
	}
	return b.String()
}

func (e *Executor) vectorBranch(ctx context.Context, q model.Query, tn Tuning) (map[string][]model.VectorHit, error) {
	if e.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	vector, err := e.Embedder.Embed(ctx, pseudoQueryText(q))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Over-fetch to give fusion headroom above top_k.
	k := q.Limit() * tn.OverfetchFactor
	hits, err := e.Index.SimilaritySearch(ctx, vector, k, nil)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]model.VectorHit)
	for _, h := range hits {
		chunk, ok, err := e.Index.GetChunk(ctx, h.ChunkID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		owner, ok, err := e.Index.OwnerOf(ctx, chunk.DocumentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Chunk from a reference document (profile text), not a
			// candidate document; it cannot rank anyone.
			continue
		}
		out[owner] = append(out[owner], model.VectorHit{ChunkID: h.ChunkID, Similarity: h.Similarity})
	}
	return out, nil
}

func (e *Executor) graphBranch(ctx context.Context, q model.Query, mode Mode, tn Tuning) graphBranchResult {
	res := graphBranchResult{
		hits:           make(map[string][]model.GraphHit),
		requiredSeeds:  map[string]string{},
		preferredSeeds: map[string]string{},
	}

	maxHops := tn.MaxHops
	if mode == ModeLocal && maxHops > 2 {
		// Local mode stays in the anchor's immediate neighborhood.
		maxHops = 2
	}

	var err error
	res.requiredSeeds, err = e.Resolver.ResolveAll(ctx, q.RequiredSkills, model.TypeSkill)
	if err != nil {
		res.err = err
		return res
	}
	res.preferredSeeds, err = e.Resolver.ResolveAll(ctx, q.PreferredSkills, model.TypeSkill)
	if err != nil {
		res.err = err
		return res
	}

	seeds := make([]string, 0, len(res.requiredSeeds)+len(res.preferredSeeds)+2)
	for id := range res.requiredSeeds {
		seeds = append(seeds, id)
	}
	for id := range res.preferredSeeds {
		if _, dup := res.requiredSeeds[id]; !dup {
			seeds = append(seeds, id)
		}
	}

	if q.ProfileName != "" {
		profile, ok, err := e.Resolver.Resolve(ctx, q.ProfileName, model.TypeProfile)
		if err != nil {
			res.err = err
			return res
		}
		if !ok {
			profile, ok, err = e.Resolver.Resolve(ctx, q.ProfileName, model.TypeDomainProfile)
			if err != nil {
				res.err = err
				return res
			}
		}
		if ok {
			res.profileSeed = profile.ID
			seeds = append(seeds, profile.ID)
		}
	}

	if q.ExperienceLevel != "" {
		level, ok, err := e.Resolver.Resolve(ctx, string(q.ExperienceLevel), model.TypeExperienceLevel)
		if err != nil {
			res.err = err
			return res
		}
		if ok {
			seeds = append(seeds, level.ID)
		}
	}

	// Seed order fixes path discovery order, which fixes explanation
	// sentence order downstream.
	sort.Strings(seeds)

	maxPathsPerSeed := q.Limit() * tn.OverfetchFactor
	for _, seedID := range seeds {
		consumed := 0
		for path, err := range e.Store.PathsToType(ctx, seedID, model.TypeCandidate, maxHops) {
			if err != nil {
				res.err = err
				return res
			}
			candidateID := pathEndpointAway(path, seedID)
			res.hits[candidateID] = append(res.hits[candidateID], model.GraphHit{
				Path:   path,
				Weight: path.Weight(),
				SeedID: seedID,
			})
			consumed++
			if consumed >= maxPathsPerSeed {
				break
			}
		}
	}
	return res
}

// pathEndpointAway returns the end of a path as walked from the seed,
// regardless of the stored direction of the final edge.
func pathEndpointAway(p model.Path, seedID string) string {
	if len(p.Steps) == 0 {
		return ""
	}
	last := p.Steps[len(p.Steps)-1]
	if len(p.Steps) == 1 {
		if last.SourceID == seedID {
			return last.TargetID
		}
		return last.SourceID
	}
	prev := p.Steps[len(p.Steps)-2]
	if last.SourceID == prev.SourceID || last.SourceID == prev.TargetID {
		return last.TargetID
	}
	return last.SourceID
}
