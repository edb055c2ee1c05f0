package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	EmbeddingDim   int    `toml:"embedding_dim"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

// RetrievalConfig tunes the executor and fusion stages. Values are
// passed into those components as an explicit tuning object so two
// concurrent queries can run with different settings.
type RetrievalConfig struct {
	VectorWeight         float64 `toml:"vector_weight"`
	GraphWeight          float64 `toml:"graph_weight"`
	CoverageWeight       float64 `toml:"coverage_weight"`
	FallbackVectorWeight float64 `toml:"fallback_vector_weight"`
	FallbackGraphWeight  float64 `toml:"fallback_graph_weight"`
	MaxHops              int     `toml:"max_hops"`
	OverfetchFactor      int     `toml:"overfetch_factor"`
	SimilarityFloor      float64 `toml:"similarity_floor"`
	ConfidenceTarget     int     `toml:"confidence_target"`
}

type ResolveConfig struct {
	// Aliases maps alternate spellings onto canonical display names,
	// e.g. "K8s" -> "Kubernetes".
	Aliases        map[string]string `toml:"aliases"`
	FuzzyThreshold float64           `toml:"fuzzy_threshold"`
}

type IngestConfig struct {
	MaxRetries  int `toml:"max_retries"`
	RetryBaseMS int `toml:"retry_base_ms"`
	BulkWorkers int `toml:"bulk_workers"`
}

type IngestPrompts struct {
	Mentions string `toml:"mentions"`
	Summary  string `toml:"summary"`
}

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Resolve   ResolveConfig   `toml:"resolve"`
	Ingest    IngestConfig    `toml:"ingest"`
	Prompts   IngestPrompts   `toml:"prompts"`
}

// Default returns the documented tuning defaults; Load starts from these
// so a partial config file only overrides what it names.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:     "ollama",
			Model:        "gpt-oss:latest",
			BaseURL:      "http://localhost:11434",
			EmbeddingDim: 768,
		},
		Retrieval: RetrievalConfig{
			VectorWeight:         0.5,
			GraphWeight:          0.3,
			CoverageWeight:       0.2,
			FallbackVectorWeight: 0.6,
			FallbackGraphWeight:  0.4,
			MaxHops:              3,
			OverfetchFactor:      4,
			SimilarityFloor:      0,
			ConfidenceTarget:     5,
		},
		Resolve: ResolveConfig{
			FuzzyThreshold: 0.5,
		},
		Ingest: IngestConfig{
			MaxRetries:  3,
			RetryBaseMS: 200,
			BulkWorkers: 4,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}
