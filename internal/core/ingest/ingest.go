package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/config"
	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/llm"
	"github.com/agenthands/talentgraph/internal/store"
)

// Ingestor is the write-side facade: idempotent upserts of entities,
// relationships and chunks with bounded exponential-backoff retries, so
// ingestion runs can crash and re-run without duplicating state.
type Ingestor struct {
	Store    store.Store
	Index    index.Index
	Embedder llm.EmbedderClient
	Tagger   *MentionTagger
	Summary  *Summarizer
	Logger   *zap.Logger

	maxRetries  int
	retryBase   time.Duration
	bulkWorkers int

	// seenRels avoids re-submitting shared relationships within one
	// ingestion run; the store is idempotent regardless. relMu guards
	// it: one Ingestor serves all HTTP requests concurrently.
	relMu    sync.Mutex
	seenRels map[model.Relationship]bool
}

func NewIngestor(s store.Store, ix index.Index, emb llm.EmbedderClient, cfg config.IngestConfig, logger *zap.Logger) *Ingestor {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	base := time.Duration(cfg.RetryBaseMS) * time.Millisecond
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	workers := cfg.BulkWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Ingestor{
		Store:       s,
		Index:       ix,
		Embedder:    emb,
		Logger:      logger,
		maxRetries:  maxRetries,
		retryBase:   base,
		bulkWorkers: workers,
		seenRels:    make(map[model.Relationship]bool),
	}
}

// retry runs op up to maxRetries times, backing off exponentially.
// Only transient unavailability is retried; anything else surfaces
// immediately.
func (in *Ingestor) retry(ctx context.Context, what string, op func() error) error {
	var err error
	for attempt := 0; attempt < in.maxRetries; attempt++ {
		if attempt > 0 {
			delay := in.retryBase << (attempt - 1)
			in.Logger.Warn("retrying after transient failure",
				zap.String("op", what), zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = op()
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrUnavailable) && !errors.Is(err, index.ErrUnavailable) {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", in.maxRetries, err)
}

// UpsertEntity creates the entity if absent. Already-exists is success;
// a type conflict is reported so the caller can skip the record.
func (in *Ingestor) UpsertEntity(ctx context.Context, e model.Entity) (created bool, err error) {
	err = in.retry(ctx, "create_entity", func() error {
		var opErr error
		created, opErr = in.Store.CreateEntity(ctx, e)
		return opErr
	})
	return created, err
}

// UpsertRelationship creates the edge if absent. Both endpoints must
// already exist; referential integrity is enforced at write time.
func (in *Ingestor) UpsertRelationship(ctx context.Context, r model.Relationship) (created bool, err error) {
	in.relMu.Lock()
	seen := in.seenRels[r]
	in.relMu.Unlock()
	if seen {
		return false, nil
	}
	err = in.retry(ctx, "create_relationship", func() error {
		var opErr error
		created, opErr = in.Store.CreateRelationship(ctx, r)
		return opErr
	})
	if err == nil {
		in.relMu.Lock()
		in.seenRels[r] = true
		in.relMu.Unlock()
	}
	return created, err
}

// UpsertChunk embeds and indexes one chunk. ownerCandidateID binds the
// chunk's document to the candidate it belongs to; empty means a
// reference document. Missing mention tags are filled in when a tagger
// is configured.
func (in *Ingestor) UpsertChunk(ctx context.Context, c model.Chunk, ownerCandidateID string) error {
	if len(c.Embedding) == 0 && in.Embedder != nil {
		vec, err := in.Embedder.Embed(ctx, c.Content)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %s: %w", c.ID, err)
		}
		c.Embedding = vec
	}
	if len(c.MentionedEntityIDs) == 0 && in.Tagger != nil {
		ids, err := in.Tagger.Tag(ctx, c.Content)
		if err != nil {
			// Tagging is best effort; an untagged chunk still searches.
			in.Logger.Warn("mention tagging failed", zap.String("chunk_id", c.ID), zap.Error(err))
		} else {
			c.MentionedEntityIDs = ids
		}
	}

	if err := in.retry(ctx, "upsert_chunk", func() error {
		return in.Index.UpsertChunk(ctx, c)
	}); err != nil {
		return err
	}
	if ownerCandidateID == "" {
		return nil
	}
	return in.retry(ctx, "bind_document", func() error {
		return in.Index.BindDocument(ctx, c.DocumentID, ownerCandidateID)
	})
}

// ChunkRecord pairs a chunk with the candidate that owns its document.
// An empty OwnerCandidateID marks a reference document.
type ChunkRecord struct {
	Chunk            model.Chunk
	OwnerCandidateID string
}

// UpsertChunks ingests a batch with bounded concurrency. Embedding
// calls dominate the cost, so workers fan out over the records; the
// first failure stops the whole batch.
func (in *Ingestor) UpsertChunks(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	workers := in.bulkWorkers
	if workers > len(records) {
		workers = len(records)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(records); i += workers {
				if ctx.Err() != nil {
					return
				}
				rec := records[i]
				if err := in.UpsertChunk(ctx, rec.Chunk, rec.OwnerCandidateID); err != nil {
					select {
					case errCh <- fmt.Errorf("chunk %s: %w", rec.Chunk.ID, err):
					default:
					}
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// RefreshDescription folds new chunk evidence into an entity's
// description via the summarizer, when one is configured.
func (in *Ingestor) RefreshDescription(ctx context.Context, entityID string, evidence []string) error {
	if in.Summary == nil || len(evidence) == 0 {
		return nil
	}
	e, ok, err := in.Store.GetEntity(ctx, entityID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entity %q not found", entityID)
	}
	summary, err := in.Summary.Amend(ctx, e.Description, evidence)
	if err != nil {
		return err
	}
	return in.retry(ctx, "update_description", func() error {
		return in.Store.UpdateDescription(ctx, entityID, summary)
	})
}

// BatchStats counts the outcome of one ingestion batch.
type BatchStats struct {
	EntitiesCreated      int `json:"entities_created"`
	EntitiesExisting     int `json:"entities_existing"`
	EntitiesSkipped      int `json:"entities_skipped"`
	RelationshipsCreated int `json:"relationships_created"`
	RelationshipsExisted int `json:"relationships_existing"`
}

// IngestBatch applies a batch of entities then relationships. A type
// conflict skips that record and continues; transient failures abort
// the batch after retries are exhausted.
func (in *Ingestor) IngestBatch(ctx context.Context, entities []model.Entity, rels []model.Relationship) (BatchStats, error) {
	var stats BatchStats
	for _, e := range entities {
		created, err := in.UpsertEntity(ctx, e)
		if errors.Is(err, store.ErrEntityConflict) {
			stats.EntitiesSkipped++
			in.Logger.Error("entity conflict, skipping record",
				zap.String("id", e.ID), zap.String("type", string(e.Type)), zap.Error(err))
			continue
		}
		if err != nil {
			return stats, err
		}
		if created {
			stats.EntitiesCreated++
		} else {
			stats.EntitiesExisting++
		}
	}
	for _, r := range rels {
		created, err := in.UpsertRelationship(ctx, r)
		if err != nil {
			return stats, err
		}
		if created {
			stats.RelationshipsCreated++
		} else {
			stats.RelationshipsExisted++
		}
	}
	return stats, nil
}
