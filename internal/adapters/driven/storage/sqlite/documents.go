package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, source_file_id, title, category, content_mime_type, source_url,
	content, size_bytes, last_modified, created_at, synced_at`

// FindBySourceFileID returns the document for a source file.
func (s *documentStore) FindBySourceFileID(ctx context.Context, sourceFileID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE source_file_id = ?`, sourceFileID)
	return scanDocument(row)
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// UpsertDocument creates or updates a document keyed by SourceFileID.
func (s *documentStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceChunks deletes and re-inserts a document's chunks in one transaction.
func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if err := domain.ValidateChunkSet(chunks); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = ?", documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}

	if err := replaceChunks(ctx, tx, documentID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IndexDocument upserts doc and replaces its chunks in one transaction.
func (s *documentStore) IndexDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := domain.ValidateChunkSet(chunks); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return err
	}
	if err := replaceChunks(ctx, tx, doc.ID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListAllChunks returns every chunk with document metadata, ordered by (document_id, index).
func (s *documentStore) ListAllChunks(ctx context.Context) ([]domain.IndexedChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.text, c.embedding, c.token_count,
			d.title, d.category, d.source_url
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.document_id, c.chunk_index
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.IndexedChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.IndexedChunk
		var embeddingBlob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &embeddingBlob, &c.TokenCount,
			&c.Title, &c.Category, &c.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ListDocuments returns one page of documents without content, sorted by title.
func (s *documentStore) ListDocuments(ctx context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	query = query.Normalise()
	needle := strings.ToLower(query.Search)

	const filter = `
		WHERE (?1 = '' OR category = ?1)
		  AND (?2 = '' OR instr(fold_case(title), ?2) > 0 OR instr(fold_case(content), ?2) > 0)`

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`+filter, query.Category, needle).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_file_id, title, category, content_mime_type, source_url,
			'', size_bytes, last_modified, created_at, synced_at
		FROM documents`+filter+`
		ORDER BY title, id
		LIMIT ?3 OFFSET ?4`,
		query.Category, needle, query.Limit, query.Offset())
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, query.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return &domain.DocumentPage{
		Documents:  docs,
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: domain.TotalPagesFor(total, query.Limit),
	}, nil
}

// Categories returns the distinct categories, sorted.
func (s *documentStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM documents WHERE category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// upsertDocument writes doc inside tx. An existing row for the same source
// file keeps its id and created_at, which are copied back into doc.
func upsertDocument(ctx context.Context, tx *sql.Tx, doc *domain.Document) error {
	var existingID string
	var createdAt time.Time
	err := tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM documents WHERE source_file_id = ?", doc.SourceFileID).
		Scan(&existingID, &createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.SourceFileID, doc.Title, doc.Category, doc.ContentMIMEType, doc.SourceURL,
			doc.Content, doc.SizeBytes, doc.LastModified, doc.CreatedAt, doc.SyncedAt)
		if err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("looking up document: %w", err)
	}

	doc.ID = existingID
	doc.CreatedAt = createdAt
	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET
			title = ?, category = ?, content_mime_type = ?, source_url = ?,
			content = ?, size_bytes = ?, last_modified = ?, synced_at = ?
		WHERE id = ?
	`, doc.Title, doc.Category, doc.ContentMIMEType, doc.SourceURL,
		doc.Content, doc.SizeBytes, doc.LastModified, doc.SyncedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}

// replaceChunks deletes and re-inserts the chunks of documentID inside tx.
func replaceChunks(ctx context.Context, tx *sql.Tx, documentID string, chunks []domain.Chunk) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, chunk_index, text, embedding, token_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, documentID, chunk.Index, chunk.Text,
			float32SliceToBytes(chunk.Embedding), chunk.TokenCount); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Index, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.SourceFileID, &doc.Title, &doc.Category, &doc.ContentMIMEType,
		&doc.SourceURL, &doc.Content, &doc.SizeBytes, &doc.LastModified, &doc.CreatedAt, &doc.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}
