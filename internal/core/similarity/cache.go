package similarity

import "sync"

// embeddingCache memoizes embeddings for the duration of one run. Each
// distinct text is embedded at most once; a failed embed is cached as an
// empty vector so the backend is not retried for every pair.
type embeddingCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func newEmbeddingCache() *embeddingCache {
	return &embeddingCache{
		vectors: make(map[string][]float32),
	}
}

func (c *embeddingCache) get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vectors[text]
	return vec, ok
}

func (c *embeddingCache) put(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[text] = vec
}

func (c *embeddingCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

func (c *embeddingCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = make(map[string][]float32)
}
