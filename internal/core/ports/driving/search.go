package driving

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// Retriever ranks stored chunks against a query vector.
type Retriever interface {
	// Retrieve returns at most k chunks by descending cosine similarity.
	// A non-positive k uses the configured default.
	Retrieve(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)
}

// SearchService provides semantic search to external actors.
type SearchService interface {
	// Search embeds query and retrieves the top k chunks.
	Search(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}
