package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/agenthands/talentgraph/internal/core/model"
)

// MemoryIndex is an in-process Index. Chunks keep their insertion order
// so tie-breaking is stable across searches.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []model.Chunk
	byID   map[string]int
	owners map[string]string

	// SimilarityFloor drops hits at or below this value. Zero keeps
	// everything with any positive signal.
	SimilarityFloor float64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID:   make(map[string]int),
		owners: make(map[string]string),
	}
}

func (ix *MemoryIndex) UpsertChunk(ctx context.Context, c model.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if pos, ok := ix.byID[c.ID]; ok {
		// Chunks are immutable; a repeated upsert keeps the original slot.
		ix.chunks[pos] = c
		return nil
	}
	ix.byID[c.ID] = len(ix.chunks)
	ix.chunks = append(ix.chunks, c)
	return nil
}

func (ix *MemoryIndex) GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	pos, ok := ix.byID[chunkID]
	if !ok {
		return model.Chunk{}, false, nil
	}
	return ix.chunks[pos], true, nil
}

func (ix *MemoryIndex) BindDocument(ctx context.Context, documentID, candidateID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.owners[documentID] = candidateID
	return nil
}

func (ix *MemoryIndex) OwnerOf(ctx context.Context, documentID string) (string, bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	owner, ok := ix.owners[documentID]
	return owner, ok, nil
}

// Cosine maps cosine similarity into [0,1] via (cos+1)/2. A zero-norm
// input has no direction and scores 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (cos + 1) / 2
}

func matchesFilter(c model.Chunk, filter *Filter) bool {
	if filter == nil {
		return true
	}
	if len(filter.DocumentIDs) > 0 {
		found := false
		for _, id := range filter.DocumentIDs {
			if c.DocumentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.MentionsAny) > 0 {
		found := false
		for _, want := range filter.MentionsAny {
			for _, got := range c.MentionedEntityIDs {
				if want == got {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (ix *MemoryIndex) SimilaritySearch(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type scored struct {
		hit Hit
		pos int
	}
	var hits []scored
	for pos, c := range ix.chunks {
		if !matchesFilter(c, filter) {
			continue
		}
		sim := Cosine(vector, c.Embedding)
		if sim <= ix.SimilarityFloor {
			continue
		}
		hits = append(hits, scored{Hit{ChunkID: c.ID, Similarity: sim}, pos})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Similarity != hits[j].hit.Similarity {
			return hits[i].hit.Similarity > hits[j].hit.Similarity
		}
		return hits[i].pos < hits[j].pos
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.hit)
	}
	return out, nil
}
