package core

import (
	"context"
	"fmt"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core/cluster"
	"github.com/deckhand/coalesce/internal/core/merge"
	"github.com/deckhand/coalesce/internal/core/model"
	"github.com/deckhand/coalesce/internal/core/quality"
	"github.com/deckhand/coalesce/internal/core/similarity"
	"github.com/deckhand/coalesce/internal/driver"
	"github.com/deckhand/coalesce/internal/llm"
)

// Engine wires the deduplication pipeline together: score, cluster, merge,
// persist, then (on demand) audit the result.
type Engine struct {
	Store     driver.CardStore
	Embedder  llm.EmbedderClient
	Scorer    *similarity.Scorer
	Clusterer *cluster.Clusterer
	Validator *quality.Validator
	Config    config.DedupConfig
}

func NewEngine(store driver.CardStore, embedder llm.EmbedderClient, cfg config.DedupConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer := similarity.NewScorer(embedder, cfg)
	clusterer := cluster.NewClusterer(scorer, cfg)

	return &Engine{
		Store:     store,
		Embedder:  embedder,
		Scorer:    scorer,
		Clusterer: clusterer,
		Validator: quality.NewValidator(clusterer, cfg),
		Config:    cfg,
	}, nil
}

// DeduplicateCards is the top-level entry point: it reduces the batch to its
// deduplicated form, persists the surviving cards through the store, and
// reports run statistics. Empty input is not an error; it yields an empty
// result and all-zero stats without touching the store.
func (e *Engine) DeduplicateCards(ctx context.Context, cards []model.Card) ([]model.Card, model.DedupStats, error) {
	stats := model.DedupStats{
		TotalCards:  len(cards),
		MeetsTarget: true,
	}
	if len(cards) == 0 {
		return []model.Card{}, stats, nil
	}

	e.Scorer.Reset()
	e.Scorer.Prime(ctx, cards)

	groups, err := e.Clusterer.DetectDuplicates(ctx, cards)
	if err != nil {
		return nil, stats, fmt.Errorf("duplicate detection failed: %w", err)
	}

	final, mergeStats := merge.ProcessDuplicates(groups, cards)

	for _, c := range final {
		if err := e.Store.AddCard(ctx, c); err != nil {
			return nil, stats, fmt.Errorf("failed to stage card %s: %w", c.ID, err)
		}
	}
	if err := e.Store.Commit(ctx); err != nil {
		// Surfaced as a hard failure so the caller can roll back.
		return nil, stats, fmt.Errorf("failed to commit deduplicated cards: %w", err)
	}

	stats.FinalCards = len(final)
	stats.DuplicatesRemoved = len(cards) - len(final)
	stats.DuplicateGroups = mergeStats.GroupsProcessed
	stats.DuplicateRate = float64(stats.DuplicatesRemoved) / float64(stats.TotalCards)
	stats.AverageSimilarity = averageSimilarity(groups)
	stats.MeetsTarget = stats.DuplicateRate <= e.Config.MaxDuplicateRate
	stats.EmbeddingFailures = e.Scorer.EmbeddingFailures()
	stats.Merge = mergeStats

	return final, stats, nil
}

// ValidateQuality audits a card list for residual duplicates without
// persisting anything.
func (e *Engine) ValidateQuality(ctx context.Context, cards []model.Card) (model.ValidationReport, error) {
	e.Scorer.Prime(ctx, cards)
	return e.Validator.ValidateQuality(ctx, cards)
}

func averageSimilarity(groups []model.DuplicateGroup) float64 {
	total := 0.0
	count := 0
	for _, g := range groups {
		for _, s := range g.SimilarityScores {
			total += s
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}
