package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It is used for tests and ephemeral runs.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	bySource  map[string]string
	chunks    map[string][]domain.Chunk

	// chunkOwner maps chunk IDs to their document; IDs are unique store-wide.
	chunkOwner map[string]string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		bySource:  make(map[string]string),
		chunks:    make(map[string][]domain.Chunk),

		chunkOwner: make(map[string]string),
	}
}

// FindBySourceFileID returns the document for a source file.
func (s *DocumentStore) FindBySourceFileID(_ context.Context, sourceFileID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySource[sourceFileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// UpsertDocument creates or updates a document keyed by SourceFileID.
func (s *DocumentStore) UpsertDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(doc)
	return nil
}

// upsertLocked keeps the existing ID and CreatedAt when the source file is known.
func (s *DocumentStore) upsertLocked(doc *domain.Document) {
	if id, ok := s.bySource[doc.SourceFileID]; ok {
		existing := s.documents[id]
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	s.documents[doc.ID] = *doc
	s.bySource[doc.SourceFileID] = doc.ID
}

// ReplaceChunks swaps a document's chunk set.
func (s *DocumentStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	if err := s.checkChunksLocked(documentID, chunks); err != nil {
		return err
	}
	s.replaceLocked(documentID, chunks)
	return nil
}

// checkChunksLocked rejects the sets the SQL stores would fail to insert:
// broken index sequences and chunk IDs owned by another document.
func (s *DocumentStore) checkChunksLocked(documentID string, chunks []domain.Chunk) error {
	if err := domain.ValidateChunkSet(chunks); err != nil {
		return err
	}
	for _, c := range chunks {
		if owner, ok := s.chunkOwner[c.ID]; ok && owner != documentID {
			return fmt.Errorf("%w: chunk ID %q belongs to document %s", domain.ErrInvalidInput, c.ID, owner)
		}
	}
	return nil
}

func (s *DocumentStore) replaceLocked(documentID string, chunks []domain.Chunk) {
	for _, c := range s.chunks[documentID] {
		delete(s.chunkOwner, c.ID)
	}
	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentID = documentID
		stored[i] = c
		s.chunkOwner[c.ID] = documentID
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Index < stored[j].Index })
	s.chunks[documentID] = stored
}

// IndexDocument upserts doc and replaces its chunks under one lock.
func (s *DocumentStore) IndexDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := doc.ID
	if existing, ok := s.bySource[doc.SourceFileID]; ok {
		id = existing
	}
	if err := s.checkChunksLocked(id, chunks); err != nil {
		return err
	}
	s.upsertLocked(doc)
	s.replaceLocked(doc.ID, chunks)
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, c := range s.chunks[id] {
		delete(s.chunkOwner, c.ID)
	}
	delete(s.bySource, doc.SourceFileID)
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListAllChunks returns every chunk ordered by (document_id, index).
func (s *DocumentStore) ListAllChunks(_ context.Context) ([]domain.IndexedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result []domain.IndexedChunk
	for _, id := range ids {
		doc := s.documents[id]
		for _, c := range s.chunks[id] {
			result = append(result, domain.IndexedChunk{
				Chunk:     c,
				Title:     doc.Title,
				Category:  doc.Category,
				SourceURL: doc.SourceURL,
			})
		}
	}
	return result, nil
}

// ListDocuments returns one page of documents without content, sorted by title.
func (s *DocumentStore) ListDocuments(_ context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	query = query.Normalise()
	needle := strings.ToLower(query.Search)

	s.mu.RLock()
	matched := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if query.Category != "" && doc.Category != query.Category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(doc.Title), needle) &&
			!strings.Contains(strings.ToLower(doc.Content), needle) {
			continue
		}
		doc.Content = ""
		matched = append(matched, doc)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := min(query.Offset(), total)
	end := min(start+query.Limit, total)

	return &domain.DocumentPage{
		Documents:  matched[start:end],
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: domain.TotalPagesFor(total, query.Limit),
	}, nil
}

// Categories returns the distinct categories, sorted.
func (s *DocumentStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, doc := range s.documents {
		if _, ok := seen[doc.Category]; ok || doc.Category == "" {
			continue
		}
		seen[doc.Category] = struct{}{}
		categories = append(categories, doc.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
