package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

type chatStore struct {
	pool *pgxpool.Pool
}

var _ driven.ChatStore = (*chatStore)(nil)

// sourceRecord is the JSONB shape of a stored message source.
type sourceRecord struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	SourceURL  string  `json:"sourceUrl,omitempty"`
	Score      float64 `json:"score"`
}

const uniqueViolation = "23505"

func (s *chatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO chat_sessions (id, owner_id, created_at) VALUES ($1, $2, $3)",
		session.ID, session.OwnerID, session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: session %s already exists", domain.ErrInvalidInput, session.ID)
		}
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func (s *chatStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := s.pool.QueryRow(ctx,
		"SELECT id, owner_id, created_at FROM chat_sessions WHERE id = $1", id).
		Scan(&session.ID, &session.OwnerID, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &session, nil
}

func (s *chatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if _, err := s.GetSession(ctx, msg.SessionID); err != nil {
		return err
	}

	var sources []sourceRecord
	if len(msg.Sources) > 0 {
		sources = make([]sourceRecord, len(msg.Sources))
		for i, src := range msg.Sources {
			sources[i] = sourceRecord(src)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, sources, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

func (s *chatStore) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, role, content, sources, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		var sources []sourceRecord
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &sources, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.Role(role)
		if len(sources) > 0 {
			msg.Sources = make([]domain.Source, len(sources))
			for i, r := range sources {
				msg.Sources[i] = domain.Source(r)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}
