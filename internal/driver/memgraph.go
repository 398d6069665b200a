package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/deckhand/coalesce/internal/core/model"
)

// MemgraphStore buffers staged cards in memory and writes them as one
// UNWIND upsert inside an explicit write transaction on Commit.
type MemgraphStore struct {
	Driver neo4j.DriverWithContext

	mu      sync.Mutex
	pending []model.Card
}

func NewMemgraphStore(uri, username, password string) (*MemgraphStore, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Connected to Memgraph")
	return &MemgraphStore{Driver: d}, nil
}

func (s *MemgraphStore) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

func (s *MemgraphStore) AddCard(ctx context.Context, card model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, card)
	return nil
}

func (s *MemgraphStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	cards := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(cards) == 0 {
		return nil
	}

	params, err := cardParams(cards)
	if err != nil {
		return err
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, SaveCardsQuery, map[string]interface{}{"cards": params})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to commit %d cards: %w", len(cards), err)
	}
	return nil
}

// cardParams flattens cards into Cypher parameters. Metadata (including any
// traceability attached by the merge step) is stored as a JSON string
// property.
func cardParams(cards []model.Card) ([]map[string]interface{}, error) {
	params := make([]map[string]interface{}, 0, len(cards))
	for _, c := range cards {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize metadata for card %s: %w", c.ID, err)
		}
		params = append(params, map[string]interface{}{
			"id":            c.ID,
			"type":          string(c.Type),
			"front":         c.Front,
			"back":          c.Back,
			"difficulty":    c.Difficulty,
			"knowledge_id":  c.KnowledgeID,
			"chapter_id":    c.ChapterID,
			"source_anchor": c.SourceAnchor,
			"metadata":      string(metadata),
		})
	}
	return params, nil
}

func (s *MemgraphStore) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Card(id);",
		"CREATE INDEX ON :Card(knowledge_id);",
		"CREATE INDEX ON :Card(chapter_id);",
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, q := range queries {
		if _, err := session.Run(ctx, q, nil); err != nil {
			log.Printf("Warning: failed to create index '%s': %v", q, err)
			// Index might already exist
		}
	}
	return nil
}
