package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/store"
)

const (
	maxInsightSentences = 6
	maxExcerpts         = 3
)

// ExplanationBuilder derives the structured rationale for one ranked
// result from its contributing paths and chunks. Pure with respect to
// its inputs: identical match data yields identical sentences. It never
// fails a query; missing evidence just produces a thinner explanation.
type ExplanationBuilder struct {
	Store  store.Store
	Index  index.Index
	Logger *zap.Logger
}

func NewExplanationBuilder(s store.Store, ix index.Index, logger *zap.Logger) *ExplanationBuilder {
	return &ExplanationBuilder{Store: s, Index: ix, Logger: logger}
}

func (b *ExplanationBuilder) displayName(ctx context.Context, id string) string {
	e, ok, err := b.Store.GetEntity(ctx, id)
	if err != nil || !ok || e.DisplayName == "" {
		return id
	}
	return e.DisplayName
}

// Build assembles the explanation for a fused result. raw supplies the
// seed bookkeeping the sentences and skill lists are derived from.
func (b *ExplanationBuilder) Build(ctx context.Context, mr model.MatchResult, raw *model.RawResultSet) *model.Explanation {
	exp := &model.Explanation{}

	signals := raw.Candidates[mr.CandidateID]
	if signals != nil {
		seenRequired := make(map[string]bool)
		seenPreferred := make(map[string]bool)
		for _, h := range signals.GraphHits {
			if name, ok := raw.RequiredSeeds[h.SeedID]; ok && !seenRequired[name] {
				seenRequired[name] = true
				exp.MatchedRequiredSkills = append(exp.MatchedRequiredSkills, name)
			}
			if name, ok := raw.PreferredSeeds[h.SeedID]; ok && !seenPreferred[name] {
				seenPreferred[name] = true
				exp.MatchedPreferredSkills = append(exp.MatchedPreferredSkills, name)
			}
		}
	}

	exp.ProfileAlignment = b.profileAlignment(ctx, mr)
	exp.GraphInsightSentences = b.insightSentences(ctx, mr)
	exp.TopSupportingExcerpts = b.excerpts(ctx, mr)
	return exp
}

// profileAlignment names the profile or domain the traversal passed
// through, if any path did.
func (b *ExplanationBuilder) profileAlignment(ctx context.Context, mr model.MatchResult) string {
	for _, p := range mr.ContributingPaths {
		for _, step := range p.Steps {
			for _, id := range []string{step.SourceID, step.TargetID} {
				e, ok, err := b.Store.GetEntity(ctx, id)
				if err != nil || !ok {
					continue
				}
				switch e.Type {
				case model.TypeProfile:
					return fmt.Sprintf("aligned with profile %s", b.nameOf(e))
				case model.TypeDomainProfile:
					return fmt.Sprintf("aligned with domain %s", b.nameOf(e))
				}
			}
		}
	}
	return ""
}

func (b *ExplanationBuilder) nameOf(e model.Entity) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.ID
}

// insightSentences turns contributing paths into short sentences, one
// per path, in discovery order. Fewer than three paths yields fewer
// sentences; under-evidence stays visible.
func (b *ExplanationBuilder) insightSentences(ctx context.Context, mr model.MatchResult) []string {
	candidateName := b.displayName(ctx, mr.CandidateID)
	var sentences []string
	seen := make(map[string]bool)

	for _, p := range mr.ContributingPaths {
		if len(sentences) >= maxInsightSentences {
			break
		}
		if len(p.Steps) == 0 {
			continue
		}
		// The step touching the candidate carries the most direct
		// evidence; the far end of the path names what it connects to.
		last := p.Steps[len(p.Steps)-1]
		near := last.SourceID
		if near == mr.CandidateID {
			near = last.TargetID
		}
		far := p.Start()
		if far == mr.CandidateID || far == near {
			far = p.End()
		}

		sentence := fmt.Sprintf("%s's %s connects to %s via %s",
			candidateName, b.displayName(ctx, near), b.displayName(ctx, far), last.Relation)
		if seen[sentence] {
			continue
		}
		seen[sentence] = true
		sentences = append(sentences, sentence)
	}
	return sentences
}

func (b *ExplanationBuilder) excerpts(ctx context.Context, mr model.MatchResult) []string {
	var out []string
	for _, hit := range mr.ContributingChunks {
		if len(out) >= maxExcerpts {
			break
		}
		chunk, ok, err := b.Index.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			b.Logger.Warn("failed to load supporting chunk", zap.String("chunk_id", hit.ChunkID), zap.Error(err))
			continue
		}
		if ok && chunk.Content != "" {
			out = append(out, chunk.Content)
		}
	}
	return out
}
