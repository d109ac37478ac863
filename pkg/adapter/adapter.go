package adapter

import (
	"context"

	"github.com/docsonar/docsonar/pkg/types"
)

// Adapter is the boundary to the document index. Implementations own the
// embedding, ANN, and BM25 machinery; the engine only consumes their ranked
// lists and never interprets how a score was computed.
type Adapter interface {
	// Search returns up to topK ranked records for the query in the given
	// mode. An empty slice is a legitimate answer, not an error.
	Search(ctx context.Context, query string, topK int, mode types.SearchMode) ([]types.DocumentRecord, error)

	// GetByID resolves a single document record, or nil when the id is
	// unknown to the index.
	GetByID(ctx context.Context, id string) (*types.DocumentRecord, error)
}
