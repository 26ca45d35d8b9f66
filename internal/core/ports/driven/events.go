package driven

import (
	"context"
	"time"
)

// Event subjects, relative to the configured prefix.
const (
	SubjectSyncCompleted = "sync.completed"
	SubjectChatCompleted = "chat.completed"
)

// EventPublisher announces pipeline events to other systems.
type EventPublisher interface {
	// Publish sends payload (JSON-encoded) on subject.
	Publish(ctx context.Context, subject string, payload any) error

	// Close flushes and releases the connection.
	Close() error
}

// SyncCompletedEvent is published after every finished sync pass.
type SyncCompletedEvent struct {
	FilesFound     int       `json:"filesFound"`
	FilesProcessed int       `json:"filesProcessed"`
	FilesSkipped   int       `json:"filesSkipped"`
	FilesFailed    int       `json:"filesFailed"`
	StartedAt      time.Time `json:"startedAt"`
	DurationMS     int64     `json:"durationMs"`
}

// ChatCompletedEvent is published after an answer has been persisted.
type ChatCompletedEvent struct {
	SessionID   string   `json:"sessionId"`
	DocumentIDs []string `json:"documentIds"`
}
