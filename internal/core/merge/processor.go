package merge

import (
	"github.com/deckhand/coalesce/internal/core/model"
)

// ProcessDuplicates collapses each group down to its primary and passes
// ungrouped cards through untouched. Output preserves the input order of the
// surviving cards. Under the "merge" strategy, metadata the primary lacks is
// copied in from its duplicates; on conflict the primary's value stands.
func ProcessDuplicates(groups []model.DuplicateGroup, allCards []model.Card) ([]model.Card, model.MergeStats) {
	stats := model.MergeStats{GroupsProcessed: len(groups)}

	dropped := make(map[string]bool)
	groupByPrimary := make(map[string]model.DuplicateGroup)
	for _, g := range groups {
		groupByPrimary[g.Primary.ID] = g
		for _, d := range g.Duplicates {
			dropped[d.ID] = true
		}
	}

	final := make([]model.Card, 0, len(allCards)-len(dropped))
	for _, card := range allCards {
		if dropped[card.ID] {
			stats.CardsRemoved++
			continue
		}
		if g, ok := groupByPrimary[card.ID]; ok {
			final = append(final, mergePrimary(card, g))
			continue
		}
		final = append(final, card)
	}
	return final, stats
}

// mergePrimary returns a copy of the primary with traceability attached and,
// under the merge strategy, duplicate metadata reconciled in. The input card
// is never mutated.
func mergePrimary(primary model.Card, g model.DuplicateGroup) model.Card {
	out := primary

	if g.MergeStrategy == model.StrategyMerge {
		out.Metadata = reconcileMetadata(out.Metadata, g.Duplicates)
	}

	if len(g.Traceability.OriginalCardIDs) > 0 {
		t := g.Traceability
		out.Metadata.Traceability = &t
	}
	return out
}

func reconcileMetadata(meta model.CardMetadata, duplicates []model.Card) model.CardMetadata {
	// Copy-on-write for the Extra map: the primary card's own map must not
	// be mutated.
	extra := meta.Extra
	cloned := false

	for _, d := range duplicates {
		if meta.KnowledgeType == "" && d.Metadata.KnowledgeType != "" {
			meta.KnowledgeType = d.Metadata.KnowledgeType
		}
		if len(meta.BlankedEntities) == 0 && len(d.Metadata.BlankedEntities) > 0 {
			meta.BlankedEntities = d.Metadata.BlankedEntities
		}
		if len(meta.Hotspots) == 0 && len(d.Metadata.Hotspots) > 0 {
			meta.Hotspots = d.Metadata.Hotspots
		}
		for k, v := range d.Metadata.Extra {
			if _, exists := extra[k]; exists {
				continue
			}
			if !cloned {
				fresh := make(map[string]string, len(extra)+1)
				for ek, ev := range extra {
					fresh[ek] = ev
				}
				extra = fresh
				cloned = true
			}
			extra[k] = v
		}
	}
	meta.Extra = extra
	return meta
}
