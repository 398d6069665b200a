package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
}

func NewGeminiClient(ctx context.Context, apiKey string, embeddingModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}
	return &GeminiClient{
		client:         client,
		embeddingModel: embeddingModel,
	}, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	em := c.client.EmbeddingModel(c.embeddingModel)
	batch := em.NewBatch()

	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			vectors[i] = []float32{}
			continue
		}
		batch.AddContent(genai.Text(t))
		positions = append(positions, i)
	}
	if len(positions) == 0 {
		return vectors, nil
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(positions) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(positions), len(res.Embeddings))
	}

	for j, e := range res.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("no embedding values at index %d", j)
		}
		vectors[positions[j]] = e.Values
	}
	return vectors, nil
}
