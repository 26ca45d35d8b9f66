package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// maxChatBody bounds the chat request body.
const maxChatBody = 64 * 1024

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// chat starts a chat turn and relays its events as SSE. Request errors are
// answered with JSON before any event is written.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if s.svc.Chat == nil {
		writeUnavailable(w, "chat")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Message is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Streaming not supported"})
		return
	}

	events, err := s.svc.Chat.Chat(r.Context(), domain.ChatRequest{
		SessionID: req.SessionID,
		OwnerID:   r.Header.Get(UserIDHeader),
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The orchestrator closes events after the terminal event or when the
	// request context is cancelled.
	for ev := range events {
		data, err := json.Marshal(toChatEventView(ev))
		if err != nil {
			logger.Warn("Failed to encode chat event: %v", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			logger.Debug("Chat client went away: %v", err)
			continue
		}
		flusher.Flush()
	}
}
