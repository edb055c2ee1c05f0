package store

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/agenthands/talentgraph/internal/core/model"
)

type halfEdge struct {
	relation model.RelationType
	other    string
	forward  bool // true when this node is the stored source
}

type relKey struct {
	source   string
	target   string
	relation model.RelationType
}

// MemoryStore is an in-process Store. Adjacency lists keep insertion
// order, which makes traversal and path enumeration deterministic.
// Reads may interleave with ingestion writes; a relationship is only
// written after both endpoints exist.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]model.Entity
	adjacent map[string][]halfEdge
	rels     map[relKey]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]model.Entity),
		adjacent: make(map[string][]halfEdge),
		rels:     make(map[relKey]bool),
	}
}

func (s *MemoryStore) EntityExists(ctx context.Context, id string, typ model.EntityType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return ok && e.Type == typ, nil
}

func (s *MemoryStore) CreateEntity(ctx context.Context, e model.Entity) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entities[e.ID]; ok {
		if existing.Type != e.Type {
			return false, fmt.Errorf("%w: id %q stored as %s, requested as %s",
				ErrEntityConflict, e.ID, existing.Type, e.Type)
		}
		return false, nil
	}
	s.entities[e.ID] = e
	return true, nil
}

func (s *MemoryStore) UpdateDescription(ctx context.Context, id, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %q not found", id)
	}
	e.Description = description
	s.entities[id] = e
	return nil
}

func (s *MemoryStore) GetEntity(ctx context.Context, id string) (model.Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok, nil
}

func (s *MemoryStore) EntitiesByType(ctx context.Context, typ model.EntityType) ([]model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Entity
	for _, e := range s.entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateRelationship(ctx context.Context, r model.Relationship) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[r.SourceID]; !ok {
		return false, fmt.Errorf("%w: source %q", ErrMissingEndpoint, r.SourceID)
	}
	if _, ok := s.entities[r.TargetID]; !ok {
		return false, fmt.Errorf("%w: target %q", ErrMissingEndpoint, r.TargetID)
	}

	key := relKey{r.SourceID, r.TargetID, r.Relation}
	if s.rels[key] {
		return false, nil
	}
	s.rels[key] = true
	s.adjacent[r.SourceID] = append(s.adjacent[r.SourceID], halfEdge{r.Relation, r.TargetID, true})
	s.adjacent[r.TargetID] = append(s.adjacent[r.TargetID], halfEdge{r.Relation, r.SourceID, false})
	return true, nil
}

func (s *MemoryStore) Neighbors(ctx context.Context, entityID string, rel model.RelationType, dir Direction) ([]Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Neighbor
	for _, he := range s.adjacent[entityID] {
		if rel != "" && he.relation != rel {
			continue
		}
		if dir == Outgoing && !he.forward {
			continue
		}
		if dir == Incoming && he.forward {
			continue
		}
		out = append(out, Neighbor{Relation: he.relation, EntityID: he.other})
	}
	return out, nil
}

// snapshot copies the adjacency and entity maps so a lazy traversal never
// holds the lock between yields. Slice headers are shared; appends to the
// live store reallocate and leave the snapshot untouched.
func (s *MemoryStore) snapshot() (map[string][]halfEdge, map[string]model.Entity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adj := make(map[string][]halfEdge, len(s.adjacent))
	for k, v := range s.adjacent {
		adj[k] = v
	}
	ents := make(map[string]model.Entity, len(s.entities))
	for k, v := range s.entities {
		ents[k] = v
	}
	return adj, ents
}

type walk struct {
	end     string
	steps   []model.PathStep
	visited map[string]bool
}

func extendWalk(w walk, he halfEdge) walk {
	steps := make([]model.PathStep, len(w.steps), len(w.steps)+1)
	copy(steps, w.steps)
	step := model.PathStep{SourceID: w.end, Relation: he.relation, TargetID: he.other}
	if !he.forward {
		step.SourceID, step.TargetID = he.other, w.end
	}
	steps = append(steps, step)

	visited := make(map[string]bool, len(w.visited)+1)
	for k := range w.visited {
		visited[k] = true
	}
	visited[he.other] = true
	return walk{end: he.other, steps: steps, visited: visited}
}

// ShortestPaths enumerates simple undirected walks from source to target,
// level by level, so shorter paths always come first.
func (s *MemoryStore) ShortestPaths(ctx context.Context, sourceID, targetID string, maxHops int) iter.Seq2[model.Path, error] {
	return s.paths(ctx, sourceID, maxHops, func(id string, _ map[string]model.Entity) bool {
		return id == targetID
	})
}

func (s *MemoryStore) PathsToType(ctx context.Context, seedID string, typ model.EntityType, maxHops int) iter.Seq2[model.Path, error] {
	return s.paths(ctx, seedID, maxHops, func(id string, ents map[string]model.Entity) bool {
		return ents[id].Type == typ
	})
}

func (s *MemoryStore) paths(ctx context.Context, sourceID string, maxHops int, terminal func(string, map[string]model.Entity) bool) iter.Seq2[model.Path, error] {
	return func(yield func(model.Path, error) bool) {
		adj, ents := s.snapshot()
		if _, ok := ents[sourceID]; !ok {
			return
		}

		frontier := []walk{{end: sourceID, visited: map[string]bool{sourceID: true}}}
		for hops := 1; hops <= maxHops && len(frontier) > 0; hops++ {
			var next []walk
			for _, w := range frontier {
				if ctx.Err() != nil {
					yield(model.Path{}, ctx.Err())
					return
				}
				for _, he := range adj[w.end] {
					if w.visited[he.other] {
						continue
					}
					nw := extendWalk(w, he)
					if terminal(he.other, ents) {
						if !yield(model.Path{Steps: nw.steps}, nil) {
							return
						}
					}
					// A terminal node still extends the walk: more
					// terminals may sit behind it, as the BFS query
					// on the graph backend also allows.
					next = append(next, nw)
				}
			}
			frontier = next
		}
	}
}
