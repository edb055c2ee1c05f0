package core

import "github.com/agenthands/talentgraph/internal/core/model"

// Mode is the retrieval strategy chosen for a query.
type Mode int

const (
	// ModeDirect runs plain vector similarity over chunks.
	ModeDirect Mode = iota
	// ModeLocal traverses the immediate neighborhood of a single anchor
	// entity.
	ModeLocal
	// ModeGlobal traverses from several independent seed entities and
	// aggregates.
	ModeGlobal
	// ModeHybrid runs vector search and graph traversal in parallel and
	// fuses them.
	ModeHybrid
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeLocal:
		return "local"
	case ModeGlobal:
		return "global"
	case ModeHybrid:
		return "hybrid"
	}
	return "unknown"
}

// SelectMode classifies a query. Pure function, never fails; empty
// queries are rejected upstream by Query.Validate.
//
// When a query qualifies for several modes the richer one wins:
// hybrid over local/global, local/global over direct. Fusing with an
// empty signal is harmless, so over-selecting hybrid is safe.
func SelectMode(q model.Query) Mode {
	skillCount := len(q.RequiredSkills) + len(q.PreferredSkills)
	hasProfile := q.ProfileName != ""
	hasLevel := q.ExperienceLevel != ""
	structural := skillCount > 0 || hasProfile || hasLevel

	if q.FreeText != "" {
		if structural {
			return ModeHybrid
		}
		return ModeDirect
	}

	criteria := skillCount
	if hasProfile {
		criteria++
	}
	if hasLevel {
		criteria++
	}

	if criteria > 1 {
		if hasProfile {
			// Anchored plus extra criteria qualifies for both local and
			// global traversal; run both branches and fuse.
			return ModeHybrid
		}
		return ModeGlobal
	}
	return ModeLocal
}
