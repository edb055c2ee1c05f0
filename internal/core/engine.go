package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/core/resolve"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/llm"
	"github.com/agenthands/talentgraph/internal/store"
)

// Engine is the hybrid retrieval and match-explanation engine. Search is
// its sole public entry point; each call runs independently, so the
// engine is safe for concurrent queries against the read-mostly store
// and index.
type Engine struct {
	Store    store.Store
	Index    index.Index
	Embedder llm.EmbedderClient
	Tuning   Tuning
	Logger   *zap.Logger

	executor  *Executor
	explainer *ExplanationBuilder
}

func NewEngine(s store.Store, ix index.Index, emb llm.EmbedderClient, r *resolve.Resolver, tn Tuning, logger *zap.Logger) *Engine {
	return &Engine{
		Store:     s,
		Index:     ix,
		Embedder:  emb,
		Tuning:    tn,
		Logger:    logger,
		executor:  NewExecutor(s, ix, emb, r, logger),
		explainer: NewExplanationBuilder(s, ix, logger),
	}
}

// Search validates, classifies, retrieves, fuses and explains. An empty
// result slice with a nil error means no qualified candidates, which is
// distinct from a failed query.
func (e *Engine) Search(ctx context.Context, q model.Query) ([]model.MatchResult, error) {
	return e.SearchTuned(ctx, q, e.Tuning)
}

// SearchTuned runs one query with explicit tuning, letting concurrent
// callers use different weights without interference.
func (e *Engine) SearchTuned(ctx context.Context, q model.Query, tn Tuning) ([]model.MatchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	mode := SelectMode(q)
	e.Logger.Debug("selected retrieval mode",
		zap.String("mode", mode.String()),
		zap.Int("top_k", q.Limit()))

	raw, err := e.executor.Execute(ctx, q, mode, tn)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// All-or-nothing on cancellation: no partial results.
		return nil, err
	}

	results := Fuse(raw, q, tn)
	for i := range results {
		results[i].Explanation = e.explainer.Build(ctx, results[i], raw)
	}

	e.Logger.Info("search completed",
		zap.String("mode", mode.String()),
		zap.Int("results", len(results)),
		zap.Bool("vector_degraded", raw.VectorDegraded),
		zap.Bool("graph_degraded", raw.GraphDegraded))
	return results, nil
}
