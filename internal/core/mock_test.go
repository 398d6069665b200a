package core

import (
	"context"

	"github.com/deckhand/coalesce/internal/core/model"
)

type MockStore struct {
	Added     []model.Card
	Commits   int
	AddErr    error
	CommitErr error
}

func (m *MockStore) AddCard(ctx context.Context, card model.Card) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Added = append(m.Added, card)
	return nil
}

func (m *MockStore) Commit(ctx context.Context) error {
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.Commits++
	return nil
}

func (m *MockStore) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockStore) Close(ctx context.Context) error {
	return nil
}

type MockEmbedder struct {
	Vectors    map[string][]float32
	Err        error
	Calls      int
	BatchCalls int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if vec, ok := m.Vectors[text]; ok {
		return vec, nil
	}
	return []float32{}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.BatchCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		if vec, ok := m.Vectors[t]; ok {
			vectors[i] = vec
		} else {
			vectors[i] = []float32{}
		}
	}
	return vectors, nil
}
