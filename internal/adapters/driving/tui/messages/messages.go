// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// StreamStarted is sent when the orchestrator accepted a question.
type StreamStarted struct {
	Events <-chan domain.ChatEvent
	Cancel context.CancelFunc
}

// StreamFailed is sent when a question was rejected before streaming.
type StreamFailed struct {
	Err error
}

// ChatEvent carries one streamed event.
type ChatEvent struct {
	Event domain.ChatEvent
}

// StreamClosed is sent when the event channel closes.
type StreamClosed struct{}
