package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// sourceRecord is the JSON shape of a stored message source.
type sourceRecord struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	SourceURL  string  `json:"sourceUrl,omitempty"`
	Score      float64 `json:"score"`
}

// CreateSession stores a new session.
func (s *chatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (id, owner_id, created_at) VALUES (?, ?, ?)",
		session.ID, session.OwnerID, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *chatStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, owner_id, created_at FROM chat_sessions WHERE id = ?", id).
		Scan(&session.ID, &session.OwnerID, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &session, nil
}

// AppendMessage adds a message to its session's log.
func (s *chatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if _, err := s.GetSession(ctx, msg.SessionID); err != nil {
		return err
	}

	var sources sql.NullString
	if len(msg.Sources) > 0 {
		records := make([]sourceRecord, len(msg.Sources))
		for i, src := range msg.Sources {
			records[i] = sourceRecord(src)
		}
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshalling sources: %w", err)
		}
		sources = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, sources, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages in creation order.
func (s *chatStore) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, sources, created_at
		FROM chat_messages
		WHERE session_id = ?
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
		var sources sql.NullString
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &sources, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.Role(role)

		if sources.Valid && sources.String != "" {
			var records []sourceRecord
			if err := json.Unmarshal([]byte(sources.String), &records); err != nil {
				return nil, fmt.Errorf("unmarshalling sources: %w", err)
			}
			msg.Sources = make([]domain.Source, len(records))
			for i, r := range records {
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
