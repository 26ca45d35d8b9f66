package driving

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// ProcessService browses indexed process documents.
type ProcessService interface {
	// List returns one page of documents matching query.
	List(ctx context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error)

	// Get returns a document with its full content.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Categories returns "All" followed by the distinct categories, sorted.
	Categories(ctx context.Context) ([]string, error)

	// EligibleForAssessment reports whether doc has enough content for
	// downstream question generation.
	EligibleForAssessment(doc *domain.Document) bool
}
