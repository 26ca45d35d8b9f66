package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

// Ensure ProcessService implements the interface.
var _ driving.ProcessService = (*ProcessService)(nil)

// ProcessService browses the indexed process documents.
type ProcessService struct {
	docStore          driven.DocumentStore
	minDocumentLength int
}

// NewProcessService creates a new process service.
// minDocumentLength is the content length needed for assessment eligibility.
func NewProcessService(docStore driven.DocumentStore, minDocumentLength int) *ProcessService {
	return &ProcessService{docStore: docStore, minDocumentLength: minDocumentLength}
}

// List returns one page of documents, sorted by title, without content.
func (s *ProcessService) List(ctx context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	return s.docStore.ListDocuments(ctx, query.Normalise())
}

// Get retrieves a document with its full content.
func (s *ProcessService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// Categories returns "All" followed by every distinct category, sorted.
func (s *ProcessService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.docStore.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{domain.AllCategories}, categories...), nil
}

// EligibleForAssessment reports whether doc has enough content to generate
// assessment questions from.
func (s *ProcessService) EligibleForAssessment(doc *domain.Document) bool {
	if doc == nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(doc.Content)) >= s.minDocumentLength
}
