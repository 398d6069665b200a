package similarity

import (
	"context"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core/common"
	"github.com/deckhand/coalesce/internal/core/model"
	"github.com/deckhand/coalesce/internal/llm"
)

// Scorer computes the composite [0,1] similarity between two cards:
// weighted front/back embedding similarity plus a metadata component,
// with an exact-text fast path that short-circuits to 1.0.
type Scorer struct {
	Embedder llm.EmbedderClient

	cfg          config.DedupConfig
	cache        *embeddingCache
	embedTimeout time.Duration
	failures     atomic.Int64
}

func NewScorer(embedder llm.EmbedderClient, cfg config.DedupConfig) *Scorer {
	return &Scorer{
		Embedder:     embedder,
		cfg:          cfg,
		cache:        newEmbeddingCache(),
		embedTimeout: time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
	}
}

// Prime embeds every distinct front/back text of the batch in one call, so
// the O(n^2) pairwise scan never waits on the embedding backend. A failed
// batch is a degraded run, not an error: affected fields score 0.0.
func (s *Scorer) Prime(ctx context.Context, cards []model.Card) {
	var texts []string
	seen := make(map[string]bool)
	for _, c := range cards {
		for _, t := range []string{c.Front, c.Back} {
			if seen[t] {
				continue
			}
			if _, ok := s.cache.get(t); ok {
				continue
			}
			seen[t] = true
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vectors, err := s.Embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		log.Printf("Warning: batch embedding failed, falling back to per-text embeds: %v", err)
		s.failures.Add(1)
		return
	}

	for i, t := range texts {
		s.cache.put(t, vectors[i])
	}
}

// Reset drops the run-scoped embedding cache and the degradation counter.
func (s *Scorer) Reset() {
	s.cache.reset()
	s.failures.Store(0)
}

// EmbeddingFailures is the number of embedding calls that failed during the
// current run (each one degraded some field scores to 0.0).
func (s *Scorer) EmbeddingFailures() int {
	return int(s.failures.Load())
}

// IsExactMatch reports whether both front and back texts match literally
// after trimming. Case-sensitive.
func (s *Scorer) IsExactMatch(a, b model.Card) bool {
	return common.CanonicalText(a.Front) == common.CanonicalText(b.Front) &&
		common.CanonicalText(a.Back) == common.CanonicalText(b.Back)
}

// Similarity computes the composite similarity. Weights need not sum to 1;
// the result is clamped to [0,1] rather than renormalized, so a strong
// metadata match can top up near-identical text.
func (s *Scorer) Similarity(ctx context.Context, a, b model.Card) float64 {
	if s.IsExactMatch(a, b) {
		return 1.0
	}

	frontSim := s.textSimilarity(ctx, a.Front, b.Front)
	backSim := s.textSimilarity(ctx, a.Back, b.Back)
	metaSim := s.MetadataSimilarity(a.Metadata, b.Metadata)

	score := s.cfg.FrontTextWeight*frontSim +
		s.cfg.BackTextWeight*backSim +
		s.cfg.MetadataWeight*metaSim

	return common.Clamp01(score)
}

func (s *Scorer) textSimilarity(ctx context.Context, t1, t2 string) float64 {
	return CosineSimilarity(s.vector(ctx, t1), s.vector(ctx, t2))
}

// vector returns the cached embedding for text, embedding it on a cache miss.
// Failures degrade to an empty (zero) vector, which is also cached so a bad
// text is only attempted once per run.
func (s *Scorer) vector(ctx context.Context, text string) []float32 {
	if vec, ok := s.cache.get(text); ok {
		return vec
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vec, err := s.Embedder.Embed(embedCtx, text)
	if err != nil {
		log.Printf("Warning: embedding failed for text (%d chars): %v", len(text), err)
		s.failures.Add(1)
		vec = []float32{}
	}
	s.cache.put(text, vec)
	return vec
}

// MetadataSimilarity averages the comparable metadata components:
// knowledge_type equality, blanked-entity Jaccard overlap, hotspot geometry
// and an extra-field overlap. Identical metadata yields exactly 1.0;
// metadata with nothing comparable yields a neutral 0.5.
func (s *Scorer) MetadataSimilarity(m1, m2 model.CardMetadata) float64 {
	if m1.IsEmpty() && m2.IsEmpty() {
		return 1.0
	}

	var components []float64

	if m1.KnowledgeType != "" && m2.KnowledgeType != "" {
		if m1.KnowledgeType == m2.KnowledgeType {
			components = append(components, 1.0)
		} else {
			components = append(components, 0.0)
		}
	}

	if len(m1.BlankedEntities) > 0 && len(m2.BlankedEntities) > 0 {
		components = append(components, entityJaccard(m1.BlankedEntities, m2.BlankedEntities))
	}

	if len(m1.Hotspots) > 0 || len(m2.Hotspots) > 0 {
		components = append(components, CompareHotspots(m1.Hotspots, m2.Hotspots))
	}

	if len(m1.Extra) > 0 && len(m2.Extra) > 0 {
		components = append(components, extraOverlap(m1.Extra, m2.Extra))
	}

	if len(components) == 0 {
		return 0.5
	}

	total := 0.0
	for _, c := range components {
		total += c
	}
	return total / float64(len(components))
}

// entityJaccard compares blanked entities as sets of entity text:
// |intersection| / |union|. Blank numbers are ignored; the same entity
// blanked at a different position is still the same fact.
func entityJaccard(e1, e2 []model.BlankedEntity) float64 {
	set1 := make(map[string]bool)
	for _, e := range e1 {
		set1[e.Entity] = true
	}
	set2 := make(map[string]bool)
	for _, e := range e2 {
		set2[e.Entity] = true
	}

	intersection := 0
	for e := range set1 {
		if set2[e] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

func extraOverlap(x1, x2 map[string]string) float64 {
	matching := 0
	keys := make(map[string]bool)
	for k := range x1 {
		keys[k] = true
	}
	for k := range x2 {
		keys[k] = true
	}
	for k := range keys {
		v1, ok1 := x1[k]
		v2, ok2 := x2[k]
		if ok1 && ok2 && v1 == v2 {
			matching++
		}
	}
	if len(keys) == 0 {
		return 1.0
	}
	return float64(matching) / float64(len(keys))
}

// CompareHotspots scores two hotspot lists. Label equality dominates: an
// unmatched label scores 0.0 for that hotspot, a matched label scores 0.8
// plus up to 0.2 for geometric overlap. Best-match scores are averaged over
// the longer list, so extra regions on either side dilute the result.
func CompareHotspots(h1, h2 []model.Hotspot) float64 {
	if len(h1) == 0 && len(h2) == 0 {
		return 1.0
	}
	if len(h1) == 0 || len(h2) == 0 {
		return 0.0
	}

	longer, shorter := h1, h2
	if len(h2) > len(h1) {
		longer, shorter = h2, h1
	}

	total := 0.0
	for _, hs := range longer {
		best := 0.0
		for _, other := range shorter {
			if hs.Label != other.Label {
				continue
			}
			score := 0.8 + 0.2*rectangleOverlap(hs, other)
			if score > best {
				best = score
			}
		}
		total += best
	}
	return total / float64(len(longer))
}

// rectangleOverlap is intersection-over-union of the two hotspot regions.
// Zero-area hotspots (bare points) compare by exact position.
func rectangleOverlap(a, b model.Hotspot) float64 {
	areaA := a.Width * a.Height
	areaB := b.Width * b.Height
	if areaA <= 0 && areaB <= 0 {
		if a.X == b.X && a.Y == b.Y {
			return 1.0
		}
		return 0.0
	}

	ix := math.Min(a.X+a.Width, b.X+b.Width) - math.Max(a.X, b.X)
	iy := math.Min(a.Y+a.Height, b.Y+b.Height) - math.Max(a.Y, b.Y)
	if ix <= 0 || iy <= 0 {
		return 0.0
	}
	intersection := ix * iy
	union := areaA + areaB - intersection
	if union <= 0 {
		return 0.0
	}
	return intersection / union
}

// CosineSimilarity maps cosine similarity into [0,1]: negative cosines clamp
// to 0.0, and zero or mismatched vectors score 0.0 instead of erroring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return common.Clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
