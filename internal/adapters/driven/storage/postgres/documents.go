package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

type documentStore struct {
	pool *pgxpool.Pool
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, source_file_id, title, category, content_mime_type, source_url,
	content, size_bytes, last_modified, created_at, synced_at`

func (s *documentStore) FindBySourceFileID(ctx context.Context, sourceFileID string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE source_file_id = $1`, sourceFileID)
	return scanDocument(row)
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (s *documentStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	return upsertDocument(ctx, s.pool, doc)
}

func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if err := domain.ValidateChunkSet(chunks); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)", documentID).Scan(&exists); err != nil {
			return fmt.Errorf("checking document: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return replaceChunks(ctx, tx, documentID, chunks)
	})
}

func (s *documentStore) IndexDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := domain.ValidateChunkSet(chunks); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := upsertDocument(ctx, tx, doc); err != nil {
			return err
		}
		return replaceChunks(ctx, tx, doc.ID, chunks)
	})
}

func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *documentStore) ListAllChunks(ctx context.Context) ([]domain.IndexedChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.text, c.embedding, c.token_count,
			d.title, d.category, d.source_url
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.document_id COLLATE "C", c.chunk_index
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.IndexedChunk
	for rows.Next() {
		var c domain.IndexedChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.Embedding, &c.TokenCount,
			&c.Title, &c.Category, &c.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

func (s *documentStore) ListDocuments(ctx context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	query = query.Normalise()
	needle := strings.ToLower(query.Search)

	const filter = `
		WHERE ($1::text = '' OR category = $1)
		  AND ($2::text = '' OR strpos(lower(title), $2) > 0 OR strpos(lower(content), $2) > 0)`

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+filter,
		query.Category, needle).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, source_file_id, title, category, content_mime_type, source_url,
			'', size_bytes, last_modified, created_at, synced_at
		FROM documents`+filter+`
		ORDER BY title COLLATE "C", id COLLATE "C"
		LIMIT $3 OFFSET $4`,
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

func (s *documentStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT category FROM documents WHERE category <> '' ORDER BY category COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// upsertDocument keeps the stored id and created_at for a known source file
// and copies them back into doc.
func upsertDocument(ctx context.Context, q querier, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source_file_id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			content_mime_type = excluded.content_mime_type,
			source_url = excluded.source_url,
			content = excluded.content,
			size_bytes = excluded.size_bytes,
			last_modified = excluded.last_modified,
			synced_at = excluded.synced_at
		RETURNING id, created_at
	`, doc.ID, doc.SourceFileID, doc.Title, doc.Category, doc.ContentMIMEType, doc.SourceURL,
		doc.Content, doc.SizeBytes, doc.LastModified, doc.CreatedAt, doc.SyncedAt).
		Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

func replaceChunks(ctx context.Context, tx pgx.Tx, documentID string, chunks []domain.Chunk) error {
	if _, err := tx.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO chunks (id, document_id, chunk_index, text, embedding, token_count)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, documentID, c.Index, c.Text, c.Embedding, c.TokenCount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.SourceFileID, &doc.Title, &doc.Category, &doc.ContentMIMEType,
		&doc.SourceURL, &doc.Content, &doc.SizeBytes, &doc.LastModified, &doc.CreatedAt, &doc.SyncedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}
