package merge

import (
	"github.com/deckhand/coalesce/internal/core/common"
	"github.com/deckhand/coalesce/internal/core/model"
)

// BuildTraceability aggregates the provenance of a duplicate group (primary
// included). Card ids are recorded in input order; relational fields are
// deduplicated and cards that lack an optional field simply contribute
// nothing. Lists are always non-nil so an absent field serializes as [].
func BuildTraceability(cards []model.Card) model.SourceTraceability {
	t := model.SourceTraceability{
		OriginalCardIDs: make([]string, 0, len(cards)),
		KnowledgeIDs:    []string{},
		ChapterIDs:      []string{},
		SourceAnchors:   []string{},
	}

	for _, c := range cards {
		t.OriginalCardIDs = append(t.OriginalCardIDs, c.ID)
		t.KnowledgeIDs = common.AppendDistinct(t.KnowledgeIDs, c.KnowledgeID)
		t.ChapterIDs = common.AppendDistinct(t.ChapterIDs, c.ChapterID)
		t.SourceAnchors = common.AppendDistinct(t.SourceAnchors, c.SourceAnchor)
	}
	return t
}
