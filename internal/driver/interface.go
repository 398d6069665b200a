package driver

import (
	"context"

	"github.com/deckhand/coalesce/internal/core/model"
)

// CardStore is the persistence collaborator. The engine only writes the
// final deduplicated cards: AddCard stages, Commit flushes in one
// transaction. A Commit failure leaves the batch unpersisted and must be
// surfaced to the caller.
type CardStore interface {
	AddCard(ctx context.Context, card model.Card) error
	Commit(ctx context.Context) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
