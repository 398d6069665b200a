package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core/model"
	"github.com/deckhand/coalesce/internal/core/similarity"
)

type MockEmbedder struct {
	Vectors map[string][]float32
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := m.Vectors[text]; ok {
		return vec, nil
	}
	return []float32{}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i], _ = m.Embed(ctx, t)
	}
	return vectors, nil
}

func newTestClusterer(vectors map[string][]float32) *Clusterer {
	cfg := config.DefaultDedupConfig()
	scorer := similarity.NewScorer(&MockEmbedder{Vectors: vectors}, cfg)
	return NewClusterer(scorer, cfg)
}

func TestDetectDuplicates_TransitiveClosure(t *testing.T) {
	// a~b and b~c cross the threshold, a~c alone does not; the chain
	// still collapses into a single group.
	vectors := map[string][]float32{
		"front a":     {1, 0},
		"front b":     {0.906, 0.423}, // ~25 degrees from a
		"front c":     {0.643, 0.766}, // ~50 degrees from a
		"shared back": {1, 1},
	}
	cards := []model.Card{
		{ID: "a", Type: model.CardTypeQA, Front: "front a", Back: "shared back", Difficulty: 2.0},
		{ID: "b", Type: model.CardTypeQA, Front: "front b", Back: "shared back", Difficulty: 3.0},
		{ID: "c", Type: model.CardTypeQA, Front: "front c", Back: "shared back", Difficulty: 1.5},
	}

	clusterer := newTestClusterer(vectors)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Size())
}

func TestDetectDuplicates_ScoresAreRelativeToPrimary(t *testing.T) {
	vectors := map[string][]float32{
		"front a":     {1, 0},
		"front b":     {0.906, 0.423},
		"front c":     {0.643, 0.766},
		"shared back": {1, 1},
	}
	cards := []model.Card{
		{ID: "a", Type: model.CardTypeQA, Front: "front a", Back: "shared back", Difficulty: 2.0},
		{ID: "b", Type: model.CardTypeQA, Front: "front b", Back: "shared back", Difficulty: 3.0},
		{ID: "c", Type: model.CardTypeQA, Front: "front c", Back: "shared back", Difficulty: 1.5},
	}

	clusterer := newTestClusterer(vectors)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "b", g.Primary.ID)
	require.Len(t, g.Duplicates, 2)
	require.Len(t, g.SimilarityScores, 2)

	ctx := context.Background()
	for i, d := range g.Duplicates {
		assert.NotEqual(t, g.Primary.ID, d.ID)
		assert.Equal(t, clusterer.Scorer.Similarity(ctx, d, g.Primary), g.SimilarityScores[i])
	}
}

func TestDetectDuplicates_SingletonsProduceNoGroups(t *testing.T) {
	vectors := map[string][]float32{
		"f1": {1, 0}, "f2": {0, 1}, "b1": {1, 1}, "b2": {-1, 1},
	}
	cards := []model.Card{
		{ID: "a", Type: model.CardTypeQA, Front: "f1", Back: "b1"},
		{ID: "b", Type: model.CardTypeQA, Front: "f2", Back: "b2"},
	}

	clusterer := newTestClusterer(vectors)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDetectDuplicates_CrossTypeNeverMerged(t *testing.T) {
	// A QA card and a CLOZE card with byte-identical text would be an
	// exact match; the per-type partition keeps them apart.
	cards := []model.Card{
		{ID: "qa", Type: model.CardTypeQA, Front: "Machine learning is a subset of AI.", Back: "true"},
		{ID: "cloze", Type: model.CardTypeCloze, Front: "Machine learning is a subset of AI.", Back: "true"},
	}

	clusterer := newTestClusterer(nil)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDetectDuplicates_ExactMatchFastPath(t *testing.T) {
	// No embeddings at all: exact text still clusters.
	cards := []model.Card{
		{ID: "a", Type: model.CardTypeQA, Front: "Q", Back: "A", Difficulty: 2.5},
		{ID: "b", Type: model.CardTypeQA, Front: "Q", Back: "A", Difficulty: 2.1},
	}

	clusterer := newTestClusterer(nil)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0].Primary.ID)
	assert.Equal(t, []float64{1.0}, groups[0].SimilarityScores)
}

func TestDetectDuplicates_TraceabilityOnGroups(t *testing.T) {
	cards := []model.Card{
		{ID: "a", Type: model.CardTypeQA, Front: "Q", Back: "A", Difficulty: 2.5, KnowledgeID: "k1", ChapterID: "ch1"},
		{ID: "b", Type: model.CardTypeQA, Front: "Q", Back: "A", Difficulty: 2.1, KnowledgeID: "k2"},
	}

	clusterer := newTestClusterer(nil)
	groups, err := clusterer.DetectDuplicates(context.Background(), cards)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	tr := groups[0].Traceability
	assert.Equal(t, []string{"a", "b"}, tr.OriginalCardIDs)
	assert.ElementsMatch(t, []string{"k1", "k2"}, tr.KnowledgeIDs)
	assert.Equal(t, []string{"ch1"}, tr.ChapterIDs)
	assert.Empty(t, tr.SourceAnchors)
}

func TestDetectDuplicates_FewerThanTwoCards(t *testing.T) {
	clusterer := newTestClusterer(nil)

	groups, err := clusterer.DetectDuplicates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = clusterer.DetectDuplicates(context.Background(), []model.Card{{ID: "only", Type: model.CardTypeQA}})
	require.NoError(t, err)
	assert.Empty(t, groups)
}
