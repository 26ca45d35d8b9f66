package driven

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Missing documents are reported as domain.ErrNotFound.
type DocumentStore interface {
	// FindBySourceFileID returns the document for a source file.
	FindBySourceFileID(ctx context.Context, sourceFileID string) (*domain.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// UpsertDocument creates a document or updates it in place.
	// CreatedAt of an existing document is preserved.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// ReplaceChunks atomically swaps a document's chunk set.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// IndexDocument upserts doc and replaces its chunks in one transaction.
	IndexDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListAllChunks returns every chunk with its document metadata,
	// ordered by (document_id, index).
	ListAllChunks(ctx context.Context) ([]domain.IndexedChunk, error)

	// ListDocuments returns one page of documents without content, sorted by title.
	ListDocuments(ctx context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error)

	// Categories returns the distinct categories, sorted.
	Categories(ctx context.Context) ([]string, error)
}

// ChatStore persists chat sessions and their messages.
type ChatStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// AppendMessage adds a message to its session's log.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a session's messages in creation order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
