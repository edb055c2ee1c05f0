package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/talentgraph/internal/core/common"
	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/core/resolve"
	"github.com/agenthands/talentgraph/internal/llm"
	"github.com/agenthands/talentgraph/internal/store"
)

// mention types worth scanning for inside chunk text. Candidates are
// bound through document ownership, not mentions.
var mentionTypes = []model.EntityType{
	model.TypeSkill,
	model.TypeProfile,
	model.TypeDomainProfile,
	model.TypeJob,
	model.TypeExperienceLevel,
}

type taggedMentions struct {
	Mentions []string `json:"mentions"`
}

// MentionTagger detects which known entities a chunk of text mentions.
// A deterministic display-name scan always runs; an LLM pass on top can
// surface paraphrased mentions when a generation client and prompt are
// configured.
type MentionTagger struct {
	Store    store.Store
	Resolver *resolve.Resolver
	LLM      llm.LLMClient
	Prompt   string
}

func NewMentionTagger(s store.Store, r *resolve.Resolver, llmClient llm.LLMClient, prompt string) *MentionTagger {
	return &MentionTagger{Store: s, Resolver: r, LLM: llmClient, Prompt: prompt}
}

func (t *MentionTagger) Tag(ctx context.Context, content string) ([]string, error) {
	found := make(map[string]bool)
	folded := strings.ToLower(content)

	for _, typ := range mentionTypes {
		entities, err := t.Store.EntitiesByType(ctx, typ)
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			name := e.DisplayName
			if name == "" {
				name = e.ID
			}
			if name != "" && strings.Contains(folded, strings.ToLower(name)) {
				found[e.ID] = true
			}
		}
	}

	if t.LLM != nil && t.Prompt != "" {
		names, err := t.llmMentions(ctx, content)
		if err != nil {
			// The scan already produced usable tags; paraphrase
			// detection is best effort.
			return sortedKeys(found), err
		}
		for _, name := range names {
			for _, typ := range mentionTypes {
				e, ok, err := t.Resolver.Resolve(ctx, name, typ)
				if err != nil {
					return sortedKeys(found), err
				}
				if ok {
					found[e.ID] = true
					break
				}
			}
		}
	}

	return sortedKeys(found), nil
}

func (t *MentionTagger) llmMentions(ctx context.Context, content string) ([]string, error) {
	prompt := fmt.Sprintf(t.Prompt, content)
	response, err := t.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mentions: %w", err)
	}
	result, err := common.ParseJSON[taggedMentions](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mentions: %w", err)
	}
	return result.Mentions, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
