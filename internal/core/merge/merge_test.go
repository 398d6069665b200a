package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckhand/coalesce/internal/core/model"
)

func TestSelectPrimary_HighestDifficulty(t *testing.T) {
	cards := []model.Card{
		{ID: "a", Difficulty: 2.0, Back: "short"},
		{ID: "b", Difficulty: 3.0, Back: "the longest and most detailed back text of the three"},
		{ID: "c", Difficulty: 1.5, Back: "medium back"},
	}

	assert.Equal(t, "b", SelectPrimary(cards).ID)
}

func TestSelectPrimary_TieBreaksOnBackLength(t *testing.T) {
	cards := []model.Card{
		{ID: "a", Difficulty: 2.0, Back: "short"},
		{ID: "b", Difficulty: 2.0, Back: "a noticeably more detailed answer"},
	}

	assert.Equal(t, "b", SelectPrimary(cards).ID)

	// Fully tied cards fall back to id order, so selection is stable
	// under input reordering.
	tied := []model.Card{
		{ID: "z", Difficulty: 2.0, Back: "same"},
		{ID: "a", Difficulty: 2.0, Back: "same"},
	}
	assert.Equal(t, "a", SelectPrimary(tied).ID)
	assert.Equal(t, "a", SelectPrimary([]model.Card{tied[1], tied[0]}).ID)
}

func TestBuildTraceability(t *testing.T) {
	cards := []model.Card{
		{ID: "a", KnowledgeID: "k1", ChapterID: "ch1", SourceAnchor: "p3"},
		{ID: "b", KnowledgeID: "k1", ChapterID: "ch2"},
		{ID: "c"},
	}

	tr := BuildTraceability(cards)

	assert.Equal(t, []string{"a", "b", "c"}, tr.OriginalCardIDs)
	assert.Equal(t, []string{"k1"}, tr.KnowledgeIDs)
	assert.Equal(t, []string{"ch1", "ch2"}, tr.ChapterIDs)
	assert.Equal(t, []string{"p3"}, tr.SourceAnchors)
}

func TestBuildTraceability_NoOptionalFields(t *testing.T) {
	tr := BuildTraceability([]model.Card{{ID: "a"}, {ID: "b"}})

	assert.Equal(t, []string{"a", "b"}, tr.OriginalCardIDs)
	assert.NotNil(t, tr.KnowledgeIDs)
	assert.Empty(t, tr.KnowledgeIDs)
	assert.Empty(t, tr.ChapterIDs)
	assert.Empty(t, tr.SourceAnchors)
}

func testGroup(strategy model.MergeStrategy, primary model.Card, dups ...model.Card) model.DuplicateGroup {
	all := append([]model.Card{primary}, dups...)
	scores := make([]float64, len(dups))
	for i := range scores {
		scores[i] = 0.95
	}
	return model.DuplicateGroup{
		Primary:          primary,
		Duplicates:       dups,
		SimilarityScores: scores,
		MergeStrategy:    strategy,
		Traceability:     BuildTraceability(all),
	}
}

func TestProcessDuplicates_RemoveDuplicates(t *testing.T) {
	primary := model.Card{ID: "a", Difficulty: 3.0, KnowledgeID: "k1"}
	dup := model.Card{ID: "b", Difficulty: 2.0, KnowledgeID: "k2"}
	unrelated := model.Card{ID: "d", Front: "unrelated"}

	all := []model.Card{primary, dup, unrelated}
	groups := []model.DuplicateGroup{testGroup(model.StrategyRemoveDuplicates, primary, dup)}

	final, stats := ProcessDuplicates(groups, all)

	require.Len(t, final, 2)
	assert.Equal(t, "a", final[0].ID)
	assert.Equal(t, "d", final[1].ID)

	// The primary absorbed b's provenance.
	require.NotNil(t, final[0].Metadata.Traceability)
	assert.Equal(t, []string{"a", "b"}, final[0].Metadata.Traceability.OriginalCardIDs)
	assert.ElementsMatch(t, []string{"k1", "k2"}, final[0].Metadata.Traceability.KnowledgeIDs)

	// The unrelated card passes through untouched.
	assert.Equal(t, unrelated, final[1])

	assert.Equal(t, 1, stats.GroupsProcessed)
	assert.Equal(t, 1, stats.CardsRemoved)
	assert.Equal(t, len(all), len(final)+stats.CardsRemoved)
}

func TestProcessDuplicates_MergeReconcilesMetadata(t *testing.T) {
	primary := model.Card{
		ID:         "a",
		Difficulty: 3.0,
		Metadata: model.CardMetadata{
			Extra: map[string]string{"source": "chapter-2"},
		},
	}
	dup := model.Card{
		ID:         "b",
		Difficulty: 2.0,
		Metadata: model.CardMetadata{
			KnowledgeType: "definition",
			Extra:         map[string]string{"source": "chapter-9", "figure": "fig-4"},
		},
	}

	groups := []model.DuplicateGroup{testGroup(model.StrategyMerge, primary, dup)}
	final, _ := ProcessDuplicates(groups, []model.Card{primary, dup})

	require.Len(t, final, 1)
	merged := final[0].Metadata

	// Fields the primary lacked are filled in; conflicts keep the
	// primary's value.
	assert.Equal(t, "definition", merged.KnowledgeType)
	assert.Equal(t, "chapter-2", merged.Extra["source"])
	assert.Equal(t, "fig-4", merged.Extra["figure"])

	// The input card's own map was not touched.
	assert.Equal(t, map[string]string{"source": "chapter-2"}, primary.Metadata.Extra)
	assert.Nil(t, primary.Metadata.Traceability)
}

func TestProcessDuplicates_NoGroups(t *testing.T) {
	cards := []model.Card{{ID: "a"}, {ID: "b"}}

	final, stats := ProcessDuplicates(nil, cards)

	assert.Equal(t, cards, final)
	assert.Equal(t, 0, stats.GroupsProcessed)
	assert.Equal(t, 0, stats.CardsRemoved)
}

func TestProcessDuplicates_MultipleGroups(t *testing.T) {
	p1 := model.Card{ID: "p1", Difficulty: 3.0}
	d1 := model.Card{ID: "d1", Difficulty: 1.0}
	p2 := model.Card{ID: "p2", Difficulty: 2.0}
	d2a := model.Card{ID: "d2a", Difficulty: 1.0}
	d2b := model.Card{ID: "d2b", Difficulty: 0.5}
	solo := model.Card{ID: "solo"}

	all := []model.Card{p1, d1, p2, d2a, d2b, solo}
	groups := []model.DuplicateGroup{
		testGroup(model.StrategyRemoveDuplicates, p1, d1),
		testGroup(model.StrategyRemoveDuplicates, p2, d2a, d2b),
	}

	final, stats := ProcessDuplicates(groups, all)

	require.Len(t, final, 3)
	assert.Equal(t, 2, stats.GroupsProcessed)
	assert.Equal(t, 3, stats.CardsRemoved)
	assert.Equal(t, len(all), len(final)+stats.CardsRemoved)
}
