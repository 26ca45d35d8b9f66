package driving

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// ChatOrchestrator answers questions grounded in the indexed documents.
type ChatOrchestrator interface {
	// Chat persists the user turn and streams the answer.
	//
	// Validation and session errors are returned before streaming starts.
	// Otherwise the channel yields a session event first and exactly one
	// terminal event (done or error) last, then closes. Cancelling ctx stops
	// the stream without persisting an answer.
	Chat(ctx context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error)

	// History returns a session's messages in creation order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
