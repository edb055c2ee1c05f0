package resolve

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/agenthands/talentgraph/internal/config"
	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/store"
)

// Resolver maps caller-supplied names ("Kubernetes", "K8s", "cloud
// architect") onto entity ids. Resolution is deterministic: alias table
// first, then exact normalized match, then token-overlap fuzzy match
// with a tunable threshold.
type Resolver struct {
	store     store.Store
	aliases   map[string]string
	threshold float64
}

func NewResolver(s store.Store, cfg config.ResolveConfig) *Resolver {
	aliases := make(map[string]string, len(cfg.Aliases))
	for alias, canonical := range cfg.Aliases {
		aliases[Normalize(alias)] = canonical
	}
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Resolver{store: s, aliases: aliases, threshold: threshold}
}

// Normalize lowercases, strips punctuation and collapses whitespace.
func Normalize(name string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func tokens(normalized string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(normalized) {
		out[t] = true
	}
	return out
}

// overlap is the Jaccard coefficient over normalized tokens.
func overlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Resolve finds the entity of the given type whose display name matches
// the supplied name. The second return is false when nothing clears the
// fuzzy threshold.
func (r *Resolver) Resolve(ctx context.Context, name string, typ model.EntityType) (model.Entity, bool, error) {
	norm := Normalize(name)
	if norm == "" {
		return model.Entity{}, false, nil
	}
	if canonical, ok := r.aliases[norm]; ok {
		norm = Normalize(canonical)
	}

	entities, err := r.store.EntitiesByType(ctx, typ)
	if err != nil {
		return model.Entity{}, false, err
	}
	// Deterministic candidate order regardless of store iteration order.
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })

	queryTokens := tokens(norm)
	var best model.Entity
	bestScore := 0.0
	found := false

	for _, e := range entities {
		entNorm := Normalize(e.DisplayName)
		if entNorm == "" {
			entNorm = Normalize(e.ID)
		}
		if entNorm == norm {
			return e, true, nil
		}
		score := overlap(queryTokens, tokens(entNorm))
		if score >= r.threshold && score > bestScore {
			best = e
			bestScore = score
			found = true
		}
	}
	return best, found, nil
}

// ResolveAll resolves a list of names, dropping the ones that do not
// match anything. The returned map goes entity id -> requested name.
func (r *Resolver) ResolveAll(ctx context.Context, names []string, typ model.EntityType) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		e, ok, err := r.Resolve(ctx, name, typ)
		if err != nil {
			return nil, err
		}
		if ok {
			out[e.ID] = name
		}
	}
	return out, nil
}
