package tui

import "errors"

// ErrMissingChatService is returned when the chat orchestrator is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")
