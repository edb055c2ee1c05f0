package store

import (
	"context"
	"fmt"
	"iter"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/driver"
)

// MemgraphStore persists the graph in Memgraph through the bolt driver.
// Entities carry a fixed :Entity label with the type as a property;
// relationships use a fixed :RELATES_TO label with the relation as a
// property so the triple (source, target, relation) can be MERGEd.
type MemgraphStore struct {
	driver driver.GraphDriver
}

func NewMemgraphStore(d driver.GraphDriver) *MemgraphStore {
	return &MemgraphStore{driver: d}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func entityFromRecord(rec *neo4j.Record) model.Entity {
	e := model.Entity{
		ID:          recordString(rec, "id"),
		Type:        model.EntityType(recordString(rec, "type")),
		DisplayName: recordString(rec, "display_name"),
		Description: recordString(rec, "description"),
	}
	if v, ok := rec.Get("attributes"); ok {
		if m, ok := v.(map[string]interface{}); ok && len(m) > 0 {
			e.Attributes = make(map[string]float64, len(m))
			for k, av := range m {
				if f, ok := av.(float64); ok {
					e.Attributes[k] = f
				}
			}
		}
	}
	return e
}

func (s *MemgraphStore) GetEntity(ctx context.Context, id string) (model.Entity, bool, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.GetEntityQuery, map[string]interface{}{"id": id})
	if err != nil {
		return model.Entity{}, false, unavailable(err)
	}
	if len(res.Records) == 0 {
		return model.Entity{}, false, nil
	}
	return entityFromRecord(res.Records[0]), true, nil
}

func (s *MemgraphStore) EntityExists(ctx context.Context, id string, typ model.EntityType) (bool, error) {
	e, ok, err := s.GetEntity(ctx, id)
	if err != nil {
		return false, err
	}
	return ok && e.Type == typ, nil
}

func (s *MemgraphStore) CreateEntity(ctx context.Context, e model.Entity) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	existing, ok, err := s.GetEntity(ctx, e.ID)
	if err != nil {
		return false, err
	}
	if ok {
		if existing.Type != e.Type {
			return false, fmt.Errorf("%w: id %q stored as %s, requested as %s",
				ErrEntityConflict, e.ID, existing.Type, e.Type)
		}
		return false, nil
	}

	attrs := map[string]interface{}{}
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	params := map[string]interface{}{
		"id":           e.ID,
		"type":         string(e.Type),
		"display_name": e.DisplayName,
		"description":  e.Description,
		"attributes":   attrs,
	}
	if _, err := s.driver.ExecuteQuery(ctx, driver.CreateEntityQuery, params); err != nil {
		return false, unavailable(err)
	}
	return true, nil
}

func (s *MemgraphStore) UpdateDescription(ctx context.Context, id, description string) error {
	res, err := s.driver.ExecuteQuery(ctx, driver.UpdateEntityDescriptionQuery, map[string]interface{}{
		"id":          id,
		"description": description,
	})
	if err != nil {
		return unavailable(err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("entity %q not found", id)
	}
	return nil
}

func (s *MemgraphStore) EntitiesByType(ctx context.Context, typ model.EntityType) ([]model.Entity, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.EntitiesByTypeQuery, map[string]interface{}{"type": string(typ)})
	if err != nil {
		return nil, unavailable(err)
	}
	out := make([]model.Entity, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, entityFromRecord(rec))
	}
	return out, nil
}

func (s *MemgraphStore) CreateRelationship(ctx context.Context, r model.Relationship) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	params := map[string]interface{}{
		"source_id": r.SourceID,
		"target_id": r.TargetID,
		"relation":  string(r.Relation),
	}
	existing, err := s.driver.ExecuteQuery(ctx, driver.GetRelationshipQuery, params)
	if err != nil {
		return false, unavailable(err)
	}
	if len(existing.Records) > 0 {
		return false, nil
	}
	res, err := s.driver.ExecuteQuery(ctx, driver.CreateRelationshipQuery, params)
	if err != nil {
		return false, unavailable(err)
	}
	if len(res.Records) == 0 {
		// MERGE produced nothing: one of the MATCHed endpoints is missing.
		return false, fmt.Errorf("%w: %s -> %s", ErrMissingEndpoint, r.SourceID, r.TargetID)
	}
	return true, nil
}

func (s *MemgraphStore) Neighbors(ctx context.Context, entityID string, rel model.RelationType, dir Direction) ([]Neighbor, error) {
	query := driver.NeighborsBothQuery
	switch dir {
	case Outgoing:
		query = driver.NeighborsOutQuery
	case Incoming:
		query = driver.NeighborsInQuery
	}
	res, err := s.driver.ExecuteQuery(ctx, query, map[string]interface{}{"id": entityID})
	if err != nil {
		return nil, unavailable(err)
	}
	var out []Neighbor
	for _, rec := range res.Records {
		n := Neighbor{
			Relation: model.RelationType(recordString(rec, "relation")),
			EntityID: recordString(rec, "id"),
		}
		if rel != "" && n.Relation != rel {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func pathFromSteps(v interface{}) (model.Path, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return model.Path{}, false
	}
	p := model.Path{Steps: make([]model.PathStep, 0, len(raw))}
	for _, sv := range raw {
		triple, ok := sv.([]interface{})
		if !ok || len(triple) != 3 {
			return model.Path{}, false
		}
		src, _ := triple[0].(string)
		rel, _ := triple[1].(string)
		dst, _ := triple[2].(string)
		p.Steps = append(p.Steps, model.PathStep{
			SourceID: src,
			Relation: model.RelationType(rel),
			TargetID: dst,
		})
	}
	return p, true
}

// pathSeq wraps an eagerly fetched result set in the lazy sequence the
// Store contract exposes. The database has already bounded the work by
// hop count, so eager fetch here is acceptable.
func (s *MemgraphStore) pathSeq(ctx context.Context, query string, params map[string]interface{}) iter.Seq2[model.Path, error] {
	return func(yield func(model.Path, error) bool) {
		res, err := s.driver.ExecuteQuery(ctx, query, params)
		if err != nil {
			yield(model.Path{}, unavailable(err))
			return
		}
		for _, rec := range res.Records {
			v, _ := rec.Get("steps")
			p, ok := pathFromSteps(v)
			if !ok || p.Hops() == 0 {
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (s *MemgraphStore) ShortestPaths(ctx context.Context, sourceID, targetID string, maxHops int) iter.Seq2[model.Path, error] {
	query := fmt.Sprintf(driver.ShortestPathsQueryFmt, maxHops)
	return s.pathSeq(ctx, query, map[string]interface{}{
		"source_id": sourceID,
		"target_id": targetID,
	})
}

func (s *MemgraphStore) PathsToType(ctx context.Context, seedID string, typ model.EntityType, maxHops int) iter.Seq2[model.Path, error] {
	query := fmt.Sprintf(driver.PathsToTypeQueryFmt, maxHops)
	return s.pathSeq(ctx, query, map[string]interface{}{
		"seed_id": seedID,
		"type":    string(typ),
	})
}
