package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/deckhand/coalesce/internal/core/model"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// DedupConfig carries the thresholds and weights of the similarity formula.
// Weights are not required to sum to 1; the composite score is clamped, not
// renormalized.
type DedupConfig struct {
	SemanticSimilarityThreshold float64 `toml:"semantic_similarity_threshold"`
	ExactMatchThreshold         float64 `toml:"exact_match_threshold"`
	MaxDuplicateRate            float64 `toml:"max_duplicate_rate"`
	FrontTextWeight             float64 `toml:"front_text_weight"`
	BackTextWeight              float64 `toml:"back_text_weight"`
	MetadataWeight              float64 `toml:"metadata_weight"`
	PreserveSourceLinks         bool    `toml:"preserve_source_links"`
	MergeStrategy               string  `toml:"merge_strategy"`
	ScoringWorkers              int     `toml:"scoring_workers"`
	EmbedTimeoutSeconds         int     `toml:"embed_timeout_seconds"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Dedup    DedupConfig    `toml:"dedup"`
}

func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		SemanticSimilarityThreshold: 0.90,
		ExactMatchThreshold:         0.99,
		MaxDuplicateRate:            0.05,
		FrontTextWeight:             0.6,
		BackTextWeight:              0.4,
		MetadataWeight:              0.1,
		PreserveSourceLinks:         true,
		MergeStrategy:               string(model.StrategyRemoveDuplicates),
		ScoringWorkers:              4,
		EmbedTimeoutSeconds:         30,
	}
}

// Validate rejects out-of-range thresholds and weights. Values are never
// silently clamped; a bad config is a construction failure.
func (c DedupConfig) Validate() error {
	unit := map[string]float64{
		"semantic_similarity_threshold": c.SemanticSimilarityThreshold,
		"exact_match_threshold":         c.ExactMatchThreshold,
		"max_duplicate_rate":            c.MaxDuplicateRate,
		"front_text_weight":             c.FrontTextWeight,
		"back_text_weight":              c.BackTextWeight,
		"metadata_weight":               c.MetadataWeight,
	}
	for name, v := range unit {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("invalid dedup config: %s must be in [0,1], got %v", name, v)
		}
	}

	switch model.MergeStrategy(c.MergeStrategy) {
	case model.StrategyRemoveDuplicates, model.StrategyMerge:
	default:
		return fmt.Errorf("invalid dedup config: unknown merge_strategy %q", c.MergeStrategy)
	}

	if c.ScoringWorkers < 1 {
		return fmt.Errorf("invalid dedup config: scoring_workers must be >= 1, got %d", c.ScoringWorkers)
	}
	if c.EmbedTimeoutSeconds < 1 {
		return fmt.Errorf("invalid dedup config: embed_timeout_seconds must be >= 1, got %d", c.EmbedTimeoutSeconds)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Config{Dedup: DefaultDedupConfig()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Dedup.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
