package store

import (
	"context"
	"errors"
	"iter"

	"github.com/agenthands/talentgraph/internal/core/model"
)

var (
	// ErrUnavailable wraps transport/storage failures. Callers retry with
	// bounded backoff before surfacing it.
	ErrUnavailable = errors.New("store unavailable")

	// ErrEntityConflict is returned when an id is re-created with a
	// different type than previously stored. Reported, never resolved
	// silently.
	ErrEntityConflict = errors.New("entity conflict")

	// ErrMissingEndpoint is returned when a relationship references an
	// entity that does not exist. Integrity is enforced at write time.
	ErrMissingEndpoint = errors.New("relationship endpoint does not exist")
)

// Direction selects which edges Neighbors follows.
type Direction int

const (
	Both Direction = iota
	Outgoing
	Incoming
)

// Neighbor is one adjacent entity together with the connecting relation.
type Neighbor struct {
	Relation model.RelationType
	EntityID string
}

// Store is the entity & relationship store. Creation is idempotent:
// "already exists" is success (created=false), not an error, so
// ingestion runs are safely re-runnable.
//
// Path sequences are lazy and hop-count ascending; callers stop
// consuming when they have enough.
type Store interface {
	EntityExists(ctx context.Context, id string, typ model.EntityType) (bool, error)
	CreateEntity(ctx context.Context, e model.Entity) (created bool, err error)
	UpdateDescription(ctx context.Context, id, description string) error
	GetEntity(ctx context.Context, id string) (model.Entity, bool, error)
	EntitiesByType(ctx context.Context, typ model.EntityType) ([]model.Entity, error)

	CreateRelationship(ctx context.Context, r model.Relationship) (created bool, err error)
	Neighbors(ctx context.Context, entityID string, rel model.RelationType, dir Direction) ([]Neighbor, error)

	// ShortestPaths yields undirected walks from source to target,
	// shortest first, bounded by maxHops.
	ShortestPaths(ctx context.Context, sourceID, targetID string, maxHops int) iter.Seq2[model.Path, error]

	// PathsToType yields walks from seed to every entity of the given
	// type within maxHops, hop count ascending. This is the traversal
	// the graph branch of retrieval runs from each resolved seed.
	PathsToType(ctx context.Context, seedID string, typ model.EntityType, maxHops int) iter.Seq2[model.Path, error]
}
