package ingest

import (
	"context"
	"fmt"

	"github.com/agenthands/talentgraph/internal/core/common"
	"github.com/agenthands/talentgraph/internal/llm"
)

type amendedSummary struct {
	Summary string `json:"summary"`
}

// Summarizer folds fresh chunk evidence into an entity description.
// Descriptions are the one mutable entity field; id and type never move.
type Summarizer struct {
	LLM    llm.LLMClient
	Prompt string
}

func NewSummarizer(llmClient llm.LLMClient, prompt string) *Summarizer {
	return &Summarizer{LLM: llmClient, Prompt: prompt}
}

// Amend produces an updated description from the existing one plus new
// evidence lines.
func (s *Summarizer) Amend(ctx context.Context, existing string, evidence []string) (string, error) {
	evidenceList := ""
	for _, ev := range evidence {
		evidenceList += fmt.Sprintf("- %s\n", ev)
	}

	prompt := fmt.Sprintf(s.Prompt, existing, evidenceList)

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	result, err := common.ParseJSON[amendedSummary](response)
	if err != nil {
		return "", fmt.Errorf("failed to parse summary result: %w", err)
	}

	return result.Summary, nil
}
