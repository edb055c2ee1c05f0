package model

// PathStep is one relationship triple along a graph path.
type PathStep struct {
	SourceID string       `json:"source_id"`
	Relation RelationType `json:"relation_type"`
	TargetID string       `json:"target_id"`
}

// Path is an ordered walk through the graph from a seed entity to a
// candidate. Paths are yielded by the store hop-count ascending.
type Path struct {
	Steps []PathStep `json:"steps"`
}

func (p Path) Hops() int {
	return len(p.Steps)
}

// Weight decays a path's contribution inversely with its length.
func (p Path) Weight() float64 {
	return 1.0 / float64(1+p.Hops())
}

// Start returns the seed entity the path was discovered from.
func (p Path) Start() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[0].SourceID
}

// End returns the final entity on the path.
func (p Path) End() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[len(p.Steps)-1].TargetID
}

// VectorHit is one chunk returned by the similarity search, already
// mapped to [0,1].
type VectorHit struct {
	ChunkID    string  `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
}

// GraphHit is one discovered path with its decayed weight.
type GraphHit struct {
	Path   Path    `json:"path"`
	Weight float64 `json:"path_weight"`
	// SeedID records which resolved query entity the traversal started from.
	SeedID string `json:"seed_id,omitempty"`
}

// CandidateSignals holds the raw per-branch evidence for one candidate
// before fusion.
type CandidateSignals struct {
	VectorHits []VectorHit `json:"vector_hits,omitempty"`
	GraphHits  []GraphHit  `json:"graph_hits,omitempty"`
}

// RawResultSet maps candidate entity id to its pre-fusion signals.
type RawResultSet struct {
	Candidates map[string]*CandidateSignals
	// RequiredSeeds maps each resolved required-skill entity id back to
	// the skill name the caller asked for; fusion uses it for coverage.
	RequiredSeeds map[string]string
	// PreferredSeeds is the same mapping for preferred skills.
	PreferredSeeds map[string]string
	// ProfileSeed is the resolved profile entity id, if any.
	ProfileSeed string
	// VectorDegraded / GraphDegraded mark a branch that failed and was
	// dropped rather than failing the query.
	VectorDegraded bool
	GraphDegraded  bool
}

func NewRawResultSet() *RawResultSet {
	return &RawResultSet{
		Candidates:     make(map[string]*CandidateSignals),
		RequiredSeeds:  make(map[string]string),
		PreferredSeeds: make(map[string]string),
	}
}

// Signals returns the signal record for a candidate, creating it if absent.
func (r *RawResultSet) Signals(candidateID string) *CandidateSignals {
	s, ok := r.Candidates[candidateID]
	if !ok {
		s = &CandidateSignals{}
		r.Candidates[candidateID] = s
	}
	return s
}

// MatchResult is one ranked entry returned by Search.
type MatchResult struct {
	CandidateID        string       `json:"candidate_id"`
	Score              float64      `json:"score"`
	Confidence         float64      `json:"confidence"`
	ContributingChunks []VectorHit  `json:"contributing_chunks,omitempty"`
	ContributingPaths  []Path       `json:"contributing_paths,omitempty"`
	Explanation        *Explanation `json:"explanation,omitempty"`

	// Per-signal components kept for explanation and debugging.
	VectorScore           float64 `json:"vector_score"`
	GraphScore            float64 `json:"graph_score"`
	RequiredSkillCoverage float64 `json:"required_skill_coverage"`
}

// Explanation is the structured rationale attached to a MatchResult.
type Explanation struct {
	MatchedRequiredSkills  []string `json:"matched_required_skills,omitempty"`
	MatchedPreferredSkills []string `json:"matched_preferred_skills,omitempty"`
	ProfileAlignment       string   `json:"profile_alignment,omitempty"`
	GraphInsightSentences  []string `json:"graph_insight_sentences,omitempty"`
	TopSupportingExcerpts  []string `json:"top_supporting_excerpts,omitempty"`
}
