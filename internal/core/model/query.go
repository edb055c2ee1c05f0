package model

import "fmt"

// ExperienceLevel mirrors the seniority buckets used by the ingested
// reference data.
type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

const DefaultTopK = 5

// Query is the structured search criteria supplied by the caller.
// At least one of FreeText, RequiredSkills or ProfileName must be set.
type Query struct {
	FreeText        string          `json:"free_text,omitempty"`
	RequiredSkills  []string        `json:"required_skills,omitempty"`
	PreferredSkills []string        `json:"preferred_skills,omitempty"`
	ProfileName     string          `json:"profile_name,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	TopK            int             `json:"top_k,omitempty"`
}

// Validate reports whether the query carries enough criteria to run.
func (q Query) Validate() error {
	if q.FreeText == "" && len(q.RequiredSkills) == 0 && q.ProfileName == "" {
		return fmt.Errorf("at least one of free_text, required_skills or profile_name is required")
	}
	if q.TopK < 0 {
		return fmt.Errorf("top_k must be positive")
	}
	switch q.ExperienceLevel {
	case "", LevelJunior, LevelMid, LevelSenior:
	default:
		return fmt.Errorf("invalid experience_level %q (junior, mid or senior)", q.ExperienceLevel)
	}
	return nil
}

// Limit returns TopK with the default applied.
func (q Query) Limit() int {
	if q.TopK <= 0 {
		return DefaultTopK
	}
	return q.TopK
}
