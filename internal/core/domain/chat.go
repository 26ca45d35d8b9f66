package domain

import "time"

// Role identifies who authored a chat message.
type Role string

// Chat message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatSession groups the messages of one conversation.
// Sessions are created lazily and never mutated.
type ChatSession struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
}

// ChatMessage is one entry in a session's append-only log.
type ChatMessage struct {
	ID        string
	SessionID string
	Role      Role
	Content   string

	// Sources is only set on assistant messages.
	Sources []Source

	CreatedAt time.Time
}

// Source is a document that backed an assistant answer.
type Source struct {
	DocumentID string
	Title      string
	Category   string
	SourceURL  string

	// Score is the best chunk score seen for this document.
	Score float64
}

// ChatRequest is one user turn.
type ChatRequest struct {
	// SessionID continues an existing session. Empty starts a new one.
	SessionID string

	// OwnerID is recorded on newly created sessions.
	OwnerID string

	// Message is the user's question.
	Message string
}

// ChatEventType discriminates streamed chat events.
type ChatEventType string

// Chat event types, in protocol order.
const (
	EventSession ChatEventType = "session"
	EventChunk   ChatEventType = "chunk"
	EventSources ChatEventType = "sources"
	EventDone    ChatEventType = "done"
	EventError   ChatEventType = "error"
)

// IsTerminal reports whether no further events follow this one.
func (t ChatEventType) IsTerminal() bool {
	return t == EventDone || t == EventError
}

// ChatEvent is one event of a streamed chat turn.
type ChatEvent struct {
	Type ChatEventType

	// SessionID is set on session events.
	SessionID string

	// Content is set on chunk events.
	Content string

	// Sources is set on sources events.
	Sources []Source

	// Message is set on error events.
	Message string
}

// SourcesFromChunks returns the distinct documents behind chunks, in rank order.
func SourcesFromChunks(chunks []RetrievedChunk) []Source {
	sources := make([]Source, 0, len(chunks))
	seen := make(map[string]int, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if idx, ok := seen[c.DocumentID]; ok {
			if c.Score > sources[idx].Score {
				sources[idx].Score = c.Score
			}
			continue
		}
		seen[c.DocumentID] = len(sources)
		sources = append(sources, Source{
			DocumentID: c.DocumentID,
			Title:      c.Title,
			Category:   c.Category,
			SourceURL:  c.SourceURL,
			Score:      c.Score,
		})
	}
	return sources
}
