package index

import (
	"context"
	"errors"

	"github.com/agenthands/talentgraph/internal/core/model"
)

// ErrUnavailable wraps storage failures in the vector index. Callers
// retry with bounded backoff before surfacing it.
var ErrUnavailable = errors.New("index unavailable")

// Hit is one chunk returned by a similarity search. Similarity is
// cosine similarity mapped to [0,1] via (cos+1)/2.
type Hit struct {
	ChunkID    string
	Similarity float64
}

// Filter restricts a search to chunks mentioning any of a set of
// entities, or belonging to a set of documents. Nil fields match all.
type Filter struct {
	MentionsAny []string
	DocumentIDs []string
}

// Index stores chunk embeddings and the chunk-to-document ownership
// used to map a hit back to its candidate. Upserts are idempotent by
// chunk id. An empty search result is not an error.
type Index interface {
	UpsertChunk(ctx context.Context, c model.Chunk) error
	GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error)

	// BindDocument records which candidate entity owns a source document.
	BindDocument(ctx context.Context, documentID, candidateID string) error
	OwnerOf(ctx context.Context, documentID string) (string, bool, error)

	// SimilaritySearch returns up to k hits ordered by similarity
	// descending, ties broken by chunk insertion order.
	SimilaritySearch(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error)
}
