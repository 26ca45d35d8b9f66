package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure ChatOrchestrator implements the interface.
var _ driving.ChatOrchestrator = (*ChatOrchestrator)(nil)

// chatEventBuffer bounds how far the producer may run ahead of the consumer.
const chatEventBuffer = 16

// noContextText replaces the context block when retrieval finds nothing.
const noContextText = "No relevant process documents were found."

// ChatConfig tunes the chat orchestrator.
type ChatConfig struct {
	// TopK is the number of chunks retrieved per question (<= 0 uses the retriever default).
	TopK int

	// HistoryLimit caps the prior messages sent to the provider (0 = all).
	HistoryLimit int

	// Options are passed through to the provider.
	Options driven.ChatOptions
}

// ChatOrchestrator answers questions from the indexed documents and streams
// the answer as chat events.
type ChatOrchestrator struct {
	embedder  driven.EmbeddingService
	retriever driving.Retriever
	llm       driven.LLMService
	chatStore driven.ChatStore
	prompts   driven.PromptStore
	publisher driven.EventPublisher
	cfg       ChatConfig

	now   func() time.Time
	newID func() string
}

// NewChatOrchestrator creates a new chat orchestrator.
func NewChatOrchestrator(
	embedder driven.EmbeddingService,
	retriever driving.Retriever,
	llm driven.LLMService,
	chatStore driven.ChatStore,
	prompts driven.PromptStore,
	cfg ChatConfig,
) *ChatOrchestrator {
	return &ChatOrchestrator{
		embedder:  embedder,
		retriever: retriever,
		llm:       llm,
		chatStore: chatStore,
		prompts:   prompts,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetPublisher sets the publisher for chat.completed events.
func (o *ChatOrchestrator) SetPublisher(p driven.EventPublisher) {
	o.publisher = p
}

// Chat validates the request, resolves the session and persists the user
// message before returning. The answer is produced on the returned channel.
func (o *ChatOrchestrator) Chat(ctx context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if o.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	session, err := o.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.ChatMessage{
		ID:        o.newID(),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   req.Message,
		CreatedAt: o.now(),
	}
	if err := o.chatStore.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	events := make(chan domain.ChatEvent, chatEventBuffer)
	go o.answer(ctx, userMsg, events)
	return events, nil
}

// History returns a session's messages in creation order.
func (o *ChatOrchestrator) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return o.chatStore.ListMessages(ctx, sessionID)
}

func (o *ChatOrchestrator) resolveSession(ctx context.Context, req domain.ChatRequest) (*domain.ChatSession, error) {
	if req.SessionID != "" {
		return o.chatStore.GetSession(ctx, req.SessionID)
	}

	session := &domain.ChatSession{
		ID:        o.newID(),
		OwnerID:   req.OwnerID,
		CreatedAt: o.now(),
	}
	if err := o.chatStore.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// answer is the single producer for events. It always closes events.
//
//nolint:gocyclo // Streaming orchestration with sequential steps
func (o *ChatOrchestrator) answer(ctx context.Context, userMsg *domain.ChatMessage, events chan<- domain.ChatEvent) {
	defer close(events)

	sessionID := userMsg.SessionID
	if !emit(ctx, events, domain.ChatEvent{Type: domain.EventSession, SessionID: sessionID}) {
		return
	}

	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("Chat failed for session %s: %v", sessionID, err)
		emit(ctx, events, domain.ChatEvent{Type: domain.EventError, Message: "Error: " + err.Error()})
	}

	// 1. RETRIEVE
	vector, err := o.embedder.Embed(ctx, userMsg.Content)
	if err != nil {
		fail(fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err))
		return
	}
	chunks, err := o.retriever.Retrieve(ctx, vector, o.cfg.TopK)
	if err != nil {
		fail(fmt.Errorf("retrieve: %w", err))
		return
	}

	// 2. BUILD PROMPT
	history, err := o.priorMessages(ctx, userMsg)
	if err != nil {
		fail(fmt.Errorf("load history: %w", err))
		return
	}
	messages, err := o.buildPrompt(history, chunks, userMsg.Content)
	if err != nil {
		fail(err)
		return
	}

	// 3. STREAM
	answer, err := o.stream(ctx, messages, events)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		fail(fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err))
		return
	}

	// 4. SOURCES
	sources := domain.SourcesFromChunks(chunks)
	if !emit(ctx, events, domain.ChatEvent{Type: domain.EventSources, Sources: sources}) {
		return
	}

	// 5. PERSIST
	assistantMsg := &domain.ChatMessage{
		ID:        o.newID(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   answer,
		Sources:   sources,
		CreatedAt: o.now(),
	}
	if err := o.chatStore.AppendMessage(ctx, assistantMsg); err != nil {
		fail(fmt.Errorf("save answer: %w", err))
		return
	}

	emit(ctx, events, domain.ChatEvent{Type: domain.EventDone})
	o.publish(ctx, sessionID, sources)
}

// stream forwards provider tokens as chunk events and returns the full
// answer. On cancellation the provider channel is drained in the background.
func (o *ChatOrchestrator) stream(
	ctx context.Context,
	messages []driven.ChatMessage,
	events chan<- domain.ChatEvent,
) (string, error) {
	deltas := make(chan driven.StreamEvent, chatEventBuffer)
	result := make(chan error, 1)
	go func() {
		result <- o.llm.ChatStream(ctx, messages, o.cfg.Options, deltas)
	}()

	var answer strings.Builder
	var streamErr error
	for {
		select {
		case <-ctx.Done():
			go drain(deltas)
			return "", ctx.Err()

		case ev, ok := <-deltas:
			if !ok {
				if err := <-result; err != nil && streamErr == nil {
					streamErr = err
				}
				return answer.String(), streamErr
			}
			switch ev.Type {
			case driven.StreamToken:
				answer.WriteString(ev.Content)
				if !emit(ctx, events, domain.ChatEvent{Type: domain.EventChunk, Content: ev.Content}) {
					go drain(deltas)
					return "", ctx.Err()
				}
			case driven.StreamError:
				if streamErr == nil {
					streamErr = ev.Err
				}
			case driven.StreamDone:
			}
		}
	}
}

// priorMessages returns the session history before userMsg, limited to the
// most recent HistoryLimit entries.
func (o *ChatOrchestrator) priorMessages(ctx context.Context, userMsg *domain.ChatMessage) ([]domain.ChatMessage, error) {
	all, err := o.chatStore.ListMessages(ctx, userMsg.SessionID)
	if err != nil {
		return nil, err
	}

	history := make([]domain.ChatMessage, 0, len(all))
	for i := range all {
		if all[i].ID != userMsg.ID {
			history = append(history, all[i])
		}
	}
	if limit := o.cfg.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (o *ChatOrchestrator) buildPrompt(
	history []domain.ChatMessage,
	chunks []domain.RetrievedChunk,
	question string,
) ([]driven.ChatMessage, error) {
	system, err := o.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	contextTemplate, err := o.prompts.Load(driven.PromptChatContext)
	if err != nil {
		return nil, fmt.Errorf("load context prompt: %w", err)
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	for i := range history {
		messages = append(messages, driven.ChatMessage{
			Role:    string(history[i].Role),
			Content: history[i].Content,
		})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    string(domain.RoleUser),
		Content: fmt.Sprintf(contextTemplate, formatContext(chunks), question),
	})
	return messages, nil
}

// formatContext renders retrieved chunks as numbered excerpts.
func formatContext(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return noContextText
	}
	var b strings.Builder
	for i := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s", i+1, chunks[i].Title, chunks[i].Category, chunks[i].Text)
	}
	return b.String()
}

func (o *ChatOrchestrator) publish(ctx context.Context, sessionID string, sources []domain.Source) {
	if o.publisher == nil {
		return
	}
	ids := make([]string, len(sources))
	for i := range sources {
		ids[i] = sources[i].DocumentID
	}
	event := driven.ChatCompletedEvent{SessionID: sessionID, DocumentIDs: ids}
	if err := o.publisher.Publish(ctx, driven.SubjectChatCompleted, event); err != nil {
		logger.Warn("Failed to publish chat event: %v", err)
	}
}

// emit sends ev unless ctx is done. It reports whether the event was sent.
func emit(ctx context.Context, events chan<- domain.ChatEvent, ev domain.ChatEvent) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}

func drain(ch <-chan driven.StreamEvent) {
	for range ch {
	}
}
