package llm

import (
	"context"
)

// EmbedderClient is the embedding collaborator. Implementations must treat
// empty or whitespace-only text as a zero vector instead of erroring; callers
// treat a zero vector as 0.0 similarity.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
