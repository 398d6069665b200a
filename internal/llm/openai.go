package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
}

func NewOpenAIClient(apiKey string, embeddingModel string, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)

	em := openai.SmallEmbedding3
	if embeddingModel != "" {
		em = openai.EmbeddingModel(embeddingModel)
	}

	return &OpenAIClient{
		client:         client,
		embeddingModel: em,
	}
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	// Blank texts get a zero vector locally; only the rest hit the API.
	var input []string
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			vectors[i] = []float32{}
			continue
		}
		input = append(input, t)
		positions = append(positions, i)
	}
	if len(input) == 0 {
		return vectors, nil
	}

	req := openai.EmbeddingRequest{
		Input: input,
		Model: c.embeddingModel,
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(input), len(resp.Data))
	}

	for j, d := range resp.Data {
		vectors[positions[j]] = d.Embedding
	}
	return vectors, nil
}
