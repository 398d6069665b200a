package cluster

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core/merge"
	"github.com/deckhand/coalesce/internal/core/model"
	"github.com/deckhand/coalesce/internal/core/similarity"
)

// Clusterer groups cards whose pairwise similarity reaches the duplicate
// threshold. Clustering is strictly partitioned by card type: a QA card and a
// CLOZE card are never compared, however close their text. Groups are the
// connected components of the similarity graph.
type Clusterer struct {
	Scorer *similarity.Scorer

	threshold           float64
	strategy            model.MergeStrategy
	workers             int
	preserveSourceLinks bool
}

func NewClusterer(scorer *similarity.Scorer, cfg config.DedupConfig) *Clusterer {
	return &Clusterer{
		Scorer:              scorer,
		threshold:           cfg.SemanticSimilarityThreshold,
		strategy:            model.MergeStrategy(cfg.MergeStrategy),
		workers:             cfg.ScoringWorkers,
		preserveSourceLinks: cfg.PreserveSourceLinks,
	}
}

type scoredPair struct {
	i, j  int
	score float64
}

// DetectDuplicates scores eligible pairs and returns one DuplicateGroup per
// connected component of size >= 2. Singleton cards produce no group. Each
// duplicate's recorded score is its similarity to the chosen primary, not to
// an arbitrary first member.
func (c *Clusterer) DetectDuplicates(ctx context.Context, cards []model.Card) ([]model.DuplicateGroup, error) {
	if len(cards) < 2 {
		return nil, nil
	}

	var pairs []struct{ i, j int }
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			if cards[i].Type != cards[j].Type {
				continue
			}
			pairs = append(pairs, struct{ i, j int }{i, j})
		}
	}

	// Embeddings are already primed, so scoring a pair is pure in-memory
	// math; the pool just keeps large batches off a single core.
	linked := make([]scoredPair, 0)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, p := range pairs {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score := c.Scorer.Similarity(gctx, cards[p.i], cards[p.j])
			if score >= c.threshold {
				mu.Lock()
				linked = append(linked, scoredPair{i: p.i, j: p.j, score: score})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uf := newUnionFind(len(cards))
	for _, l := range linked {
		uf.union(l.i, l.j)
	}

	// Collect components in input order so group construction is
	// deterministic.
	componentsByRoot := make(map[int][]int)
	var roots []int
	for i := range cards {
		root := uf.find(i)
		if _, seen := componentsByRoot[root]; !seen {
			roots = append(roots, root)
		}
		componentsByRoot[root] = append(componentsByRoot[root], i)
	}

	var groups []model.DuplicateGroup
	for _, root := range roots {
		members := componentsByRoot[root]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, c.buildGroup(ctx, cards, members))
	}
	return groups, nil
}

func (c *Clusterer) buildGroup(ctx context.Context, cards []model.Card, members []int) model.DuplicateGroup {
	groupCards := make([]model.Card, len(members))
	for i, idx := range members {
		groupCards[i] = cards[idx]
	}

	primary := merge.SelectPrimary(groupCards)

	duplicates := make([]model.Card, 0, len(groupCards)-1)
	scores := make([]float64, 0, len(groupCards)-1)
	for _, card := range groupCards {
		if card.ID == primary.ID {
			continue
		}
		duplicates = append(duplicates, card)
		scores = append(scores, c.Scorer.Similarity(ctx, card, primary))
	}

	group := model.DuplicateGroup{
		Primary:          primary,
		Duplicates:       duplicates,
		SimilarityScores: scores,
		MergeStrategy:    c.strategy,
	}
	if c.preserveSourceLinks {
		group.Traceability = merge.BuildTraceability(groupCards)
	}
	return group
}
