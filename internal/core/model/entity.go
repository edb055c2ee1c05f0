package model

import "fmt"

// EntityType is the closed set of node types the matcher understands.
// Profile reference data and candidate documents both map onto it.
type EntityType string

const (
	TypeDomainProfile   EntityType = "DOMAIN_PROFILE"
	TypeProfile         EntityType = "PROFILE"
	TypeCandidate       EntityType = "CANDIDATE"
	TypeDomainJob       EntityType = "DOMAIN_JOB"
	TypeJob             EntityType = "JOB"
	TypeExperienceLevel EntityType = "EXPERIENCE_LEVEL"
	TypeSkill           EntityType = "SKILL"
)

var entityTypes = map[EntityType]bool{
	TypeDomainProfile:   true,
	TypeProfile:         true,
	TypeCandidate:       true,
	TypeDomainJob:       true,
	TypeJob:             true,
	TypeExperienceLevel: true,
	TypeSkill:           true,
}

func (t EntityType) Valid() bool {
	return entityTypes[t]
}

// RelationType names a directed edge between two entities.
type RelationType string

const (
	RelHasProfile         RelationType = "HAS_PROFILE"
	RelBelongsToDomain    RelationType = "BELONGS_TO_DOMAIN"
	RelWorksIn            RelationType = "WORKS_IN"
	RelHasJobTitle        RelationType = "HAS_JOB_TITLE"
	RelHasExperienceLevel RelationType = "HAS_EXPERIENCE_LEVEL"
	RelIncludesJob        RelationType = "INCLUDES_JOB"
	RelRequiresLevel      RelationType = "REQUIRES_LEVEL"
	RelHasSkill           RelationType = "HAS_SKILL"
	RelRequiresSkill      RelationType = "REQUIRES_SKILL"
	RelMentions           RelationType = "MENTIONS"
)

// Entity is a typed node in the knowledge graph. ID is unique within its
// type and, together with Type, never changes after creation. Description
// may be amended by ingestion (it feeds embedding and explanation text).
type Entity struct {
	ID          string             `json:"id"`
	Type        EntityType         `json:"type"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description,omitempty"`
	Attributes  map[string]float64 `json:"attributes,omitempty"`
}

// Validate enforces shape at creation time so downstream consumers never
// have to re-check it.
func (e Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity id is empty")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown entity type %q", e.Type)
	}
	return nil
}

// Relationship is a directed, typed edge. The (source, target, relation)
// triple is unique; repeated creation is a no-op.
type Relationship struct {
	SourceID string       `json:"source_id"`
	TargetID string       `json:"target_id"`
	Relation RelationType `json:"relation_type"`
}

func (r Relationship) Validate() error {
	if r.SourceID == "" || r.TargetID == "" {
		return fmt.Errorf("relationship endpoint is empty")
	}
	if r.Relation == "" {
		return fmt.Errorf("relationship type is empty")
	}
	return nil
}
