package quality

import (
	"context"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core/cluster"
	"github.com/deckhand/coalesce/internal/core/model"
)

// Validator re-runs duplicate clustering over an already deduplicated card
// list to measure the residual duplicate rate. It is a pure audit: the input
// slice is never modified and nothing is persisted.
type Validator struct {
	Clusterer *cluster.Clusterer

	maxDuplicateRate float64
}

func NewValidator(clusterer *cluster.Clusterer, cfg config.DedupConfig) *Validator {
	return &Validator{
		Clusterer:        clusterer,
		maxDuplicateRate: cfg.MaxDuplicateRate,
	}
}

func (v *Validator) ValidateQuality(ctx context.Context, cards []model.Card) (model.ValidationReport, error) {
	audited := make([]model.Card, len(cards))
	copy(audited, cards)

	groups, err := v.Clusterer.DetectDuplicates(ctx, audited)
	if err != nil {
		return model.ValidationReport{}, err
	}

	inGroups := 0
	for _, g := range groups {
		inGroups += g.Size()
	}

	rate := 0.0
	if len(cards) > 0 {
		rate = float64(inGroups) / float64(len(cards))
	}

	return model.ValidationReport{
		RemainingDuplicateGroups: len(groups),
		RemainingDuplicateRate:   rate,
		MeetsQualityThreshold:    rate <= v.maxDuplicateRate,
	}, nil
}
