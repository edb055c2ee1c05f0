package core

import (
	"math"
	"sort"

	"github.com/agenthands/talentgraph/internal/core/model"
)

// Fuse merges the vector and graph signals of a raw result set into one
// deterministic ranking: combined score descending, candidate id
// ascending on ties, truncated to top_k only after the required-skill
// filter has run.
func Fuse(raw *model.RawResultSet, q model.Query, tn Tuning) []model.MatchResult {
	if raw == nil || len(raw.Candidates) == 0 {
		return nil
	}

	candidateIDs := make([]string, 0, len(raw.Candidates))
	for id := range raw.Candidates {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Strings(candidateIDs)

	// The hard filter only applies when the graph branch actually ran;
	// with the graph signal degraded away there is no reachability
	// evidence either way, and dropping everything would turn a partial
	// outage into a silent empty result.
	enforceRequired := len(q.RequiredSkills) > 0 && !raw.GraphDegraded

	var results []model.MatchResult
	for _, candidateID := range candidateIDs {
		signals := raw.Candidates[candidateID]

		vectorScore := 0.0
		for _, h := range signals.VectorHits {
			if h.Similarity > vectorScore {
				vectorScore = h.Similarity
			}
		}

		// Path weights sum with saturation: more corroborating paths
		// keep helping, but never past 1.
		graphScore := 0.0
		for _, h := range signals.GraphHits {
			graphScore += h.Weight
		}
		graphScore = math.Min(1, graphScore)

		coverage := 0.0
		if len(q.RequiredSkills) > 0 {
			reached := make(map[string]bool)
			for _, h := range signals.GraphHits {
				if name, ok := raw.RequiredSeeds[h.SeedID]; ok {
					reached[name] = true
				}
			}
			coverage = float64(len(reached)) / float64(len(q.RequiredSkills))
		}

		if enforceRequired && coverage == 0 {
			continue
		}

		var score float64
		if enforceRequired {
			score = tn.VectorWeight*vectorScore + tn.GraphWeight*graphScore + tn.CoverageWeight*coverage
		} else {
			score = tn.FallbackVectorWeight*vectorScore + tn.FallbackGraphWeight*graphScore
		}
		score = clamp01(score)

		// Confidence measures evidence breadth, not score: several
		// independent signals beat one strong one.
		evidence := len(signals.VectorHits) + len(signals.GraphHits)
		confidence := clamp01(float64(evidence) / float64(tn.ConfidenceTarget))

		paths := make([]model.Path, 0, len(signals.GraphHits))
		for _, h := range signals.GraphHits {
			paths = append(paths, h.Path)
		}

		results = append(results, model.MatchResult{
			CandidateID:           candidateID,
			Score:                 score,
			Confidence:            confidence,
			ContributingChunks:    signals.VectorHits,
			ContributingPaths:     paths,
			VectorScore:           vectorScore,
			GraphScore:            graphScore,
			RequiredSkillCoverage: coverage,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	if limit := q.Limit(); len(results) > limit {
		results = results[:limit]
	}
	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
