package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

type chatFixture struct {
	docs      *memory.DocumentStore
	chats     *memory.ChatStore
	emb       *mockEmbedder
	llm       *mockLLM
	prompts   *mockPrompts
	publisher *mockPublisher
	svc       *ChatOrchestrator
}

func newChatFixture(t *testing.T, cfg ChatConfig) *chatFixture {
	t.Helper()
	f := &chatFixture{
		docs:      memory.NewDocumentStore(),
		chats:     memory.NewChatStore(),
		emb:       newMockEmbedder(),
		llm:       &mockLLM{tokens: []string{"Submit ", "the ", "form."}},
		prompts:   &mockPrompts{},
		publisher: &mockPublisher{},
	}
	indexVectors(t, f.docs, "visa", []float32{1, 0}, []float32{0.9, 0.1})
	indexVectors(t, f.docs, "payroll", []float32{0, 1})
	f.emb.vectors["visa"] = []float32{1, 0}

	f.svc = NewChatOrchestrator(f.emb, NewRetriever(f.docs, 5), f.llm, f.chats, f.prompts, cfg)
	f.svc.SetPublisher(f.publisher)
	return f
}

func collect(t *testing.T, events <-chan domain.ChatEvent) []domain.ChatEvent {
	t.Helper()
	var out []domain.ChatEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("chat stream did not close")
			return out
		}
	}
}

func eventTypes(events []domain.ChatEvent) []domain.ChatEventType {
	types := make([]domain.ChatEventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

// ==== Chat Tests ====

func TestChatOrchestrator_StreamsInProtocolOrder(t *testing.T) {
	f := newChatFixture(t, ChatConfig{TopK: 2})

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{OwnerID: "user-1", Message: "How do I apply for a visa?"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, []domain.ChatEventType{
		domain.EventSession,
		domain.EventChunk, domain.EventChunk, domain.EventChunk,
		domain.EventSources,
		domain.EventDone,
	}, eventTypes(events))

	sessionID := events[0].SessionID
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "Submit ", events[1].Content)

	sources := events[4].Sources
	require.Len(t, sources, 1, "two chunks of the same document give one source")
	assert.Equal(t, "visa", sources[0].DocumentID)
	assert.Equal(t, "Title visa", sources[0].Title)
	assert.InDelta(t, 1.0, sources[0].Score, 1e-9)

	session, err := f.chats.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.OwnerID)

	history, err := f.svc.History(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "How do I apply for a visa?", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "Submit the form.", history[1].Content)
	assert.Equal(t, sources, history[1].Sources)
}

func TestChatOrchestrator_BuildsGroundedPrompt(t *testing.T) {
	f := newChatFixture(t, ChatConfig{TopK: 1})

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "visa question"})
	require.NoError(t, err)
	collect(t, ch)

	prompt := f.llm.lastPrompt()
	require.Len(t, prompt, 2)
	assert.Equal(t, "system", prompt[0].Role)
	assert.Equal(t, "You answer from company processes.", prompt[0].Content)
	assert.Equal(t, "user", prompt[1].Role)
	assert.Contains(t, prompt[1].Content, "[1] Title visa (General)\nchunk 0 of visa")
	assert.NotContains(t, prompt[1].Content, "payroll")
	assert.Contains(t, prompt[1].Content, "Question: visa question")
}

func TestChatOrchestrator_NoContextPrompt(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})
	f.svc.retriever = NewRetriever(memory.NewDocumentStore(), 5)

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "anything"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)
	assert.Empty(t, events[len(events)-2].Sources)
	assert.Contains(t, f.llm.lastPrompt()[1].Content, noContextText)
}

func TestChatOrchestrator_ContinuesSessionWithHistory(t *testing.T) {
	f := newChatFixture(t, ChatConfig{HistoryLimit: 2})

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "first question"})
	require.NoError(t, err)
	sessionID := collect(t, ch)[0].SessionID

	ch, err = f.svc.Chat(context.Background(), domain.ChatRequest{SessionID: sessionID, Message: "second question"})
	require.NoError(t, err)
	events := collect(t, ch)
	assert.Equal(t, sessionID, events[0].SessionID)

	prompt := f.llm.lastPrompt()
	require.Len(t, prompt, 4)
	assert.Equal(t, "user", prompt[1].Role)
	assert.Equal(t, "first question", prompt[1].Content)
	assert.Equal(t, "assistant", prompt[2].Role)
	assert.Equal(t, "Submit the form.", prompt[2].Content)
	assert.Contains(t, prompt[3].Content, "Question: second question")

	ch, err = f.svc.Chat(context.Background(), domain.ChatRequest{SessionID: sessionID, Message: "third question"})
	require.NoError(t, err)
	collect(t, ch)

	prompt = f.llm.lastPrompt()
	require.Len(t, prompt, 4, "history is limited to the two latest messages")
	assert.Equal(t, "second question", prompt[1].Content)

	history, err := f.svc.History(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, history, 6)
}

func TestChatOrchestrator_RejectsBeforeStreaming(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})

	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Chat(context.Background(), domain.ChatRequest{SessionID: "missing", Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatOrchestrator_RequiresProviders(t *testing.T) {
	chats := memory.NewChatStore()
	retriever := NewRetriever(memory.NewDocumentStore(), 5)

	svc := NewChatOrchestrator(newMockEmbedder(), retriever, nil, chats, &mockPrompts{}, ChatConfig{})
	_, err := svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc = NewChatOrchestrator(nil, retriever, &mockLLM{}, chats, &mockPrompts{}, ChatConfig{})
	_, err = svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestChatOrchestrator_GenerationErrorPersistsNoAnswer(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})
	f.llm.err = errors.New("overloaded")

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "visa?"})
	require.NoError(t, err)
	events := collect(t, ch)

	types := eventTypes(events)
	assert.Equal(t, domain.EventSession, types[0])
	assert.Equal(t, domain.EventError, types[len(types)-1])
	assert.NotContains(t, types, domain.EventDone)
	assert.NotContains(t, types, domain.EventSources)
	assert.Equal(t, "Error: generation failed: overloaded", events[len(events)-1].Message)

	history, err := f.svc.History(context.Background(), events[0].SessionID)
	require.NoError(t, err)
	require.Len(t, history, 1, "only the user message is stored")
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Empty(t, f.publisher.published())
}

func TestChatOrchestrator_EmbeddingErrorEmitsError(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})
	f.emb.err = errors.New("quota exceeded")

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "visa?"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, []domain.ChatEventType{domain.EventSession, domain.EventError}, eventTypes(events))
	assert.Equal(t, "Error: embedding failed: quota exceeded", events[1].Message)
}

func TestChatOrchestrator_PromptErrorEmitsError(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})
	f.prompts.missing = driven.PromptChatContext

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "visa?"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, []domain.ChatEventType{domain.EventSession, domain.EventError}, eventTypes(events))
	assert.Contains(t, events[1].Message, "load context prompt")
}

func TestChatOrchestrator_CancellationPersistsNothing(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})
	f.llm.block = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "visa?"})
	require.NoError(t, err)

	first := <-ch
	require.Equal(t, domain.EventSession, first.Type)
	chunk := <-ch
	require.Equal(t, domain.EventChunk, chunk.Type)

	cancel()
	close(f.llm.block)
	rest := collect(t, ch)

	for _, ev := range rest {
		assert.NotEqual(t, domain.EventDone, ev.Type)
		assert.NotEqual(t, domain.EventSources, ev.Type)
	}

	history, err := f.svc.History(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "no assistant message after cancellation")
}

func TestChatOrchestrator_PublishesCompletion(t *testing.T) {
	f := newChatFixture(t, ChatConfig{})

	ch, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "visa?"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Eventually(t, func() bool {
		return len(f.publisher.published()) == 1
	}, time.Second, 10*time.Millisecond)
	f.publisher.mu.Lock()
	event, ok := f.publisher.payloads[0].(driven.ChatCompletedEvent)
	f.publisher.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, events[0].SessionID, event.SessionID)
	assert.Equal(t, []string{"visa", "payroll"}, event.DocumentIDs)
}
