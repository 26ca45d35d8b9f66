package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockSource implements driven.DocumentSource over an in-memory file set.
type mockSource struct {
	mu        sync.Mutex
	files     []domain.SourceFile
	content   map[string]*domain.FetchedContent
	fetchErr  map[string]error
	listErr   error
	fetches   []string
	onList    func()
	fetchHook func(id string)
}

func newMockSource() *mockSource {
	return &mockSource{
		content:  make(map[string]*domain.FetchedContent),
		fetchErr: make(map[string]error),
	}
}

func (m *mockSource) add(id, name, lastModified, mime, text string) {
	m.files = append(m.files, domain.SourceFile{
		ID:           id,
		Name:         name,
		MIMEType:     mime,
		LastModified: lastModified,
		SizeBytes:    int64(len(text)),
		WebURL:       "https://drive.example.com/" + id,
	})
	m.content[id] = &domain.FetchedContent{Data: []byte(text), MIMEType: mime}
}

func (m *mockSource) touch(id, lastModified, text string) {
	for i := range m.files {
		if m.files[i].ID == id {
			m.files[i].LastModified = lastModified
		}
	}
	m.content[id].Data = []byte(text)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) ListFiles(_ context.Context) ([]domain.SourceFile, error) {
	if m.onList != nil {
		m.onList()
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.SourceFile(nil), m.files...), nil
}

func (m *mockSource) Fetch(_ context.Context, file domain.SourceFile) (*domain.FetchedContent, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, file.ID)
	m.mu.Unlock()
	if m.fetchHook != nil {
		m.fetchHook(file.ID)
	}
	if err := m.fetchErr[file.ID]; err != nil {
		return nil, err
	}
	c, ok := m.content[file.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.FetchedContent{Data: append([]byte(nil), c.Data...), MIMEType: c.MIMEType}, nil
}

// mockEmbedder implements driven.EmbeddingService with deterministic vectors.
// Texts containing a key of vectors get that vector; others get a hash vector.
type mockEmbedder struct {
	mu         sync.Mutex
	batchCalls int
	embedCalls int
	failOn     string
	err        error
	short      bool
	vectors    map[string][]float32
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: make(map[string][]float32)}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	for key, v := range m.vectors {
		if strings.Contains(text, key) {
			return v
		}
	}
	var sum float32
	for _, r := range text {
		sum += float32(r % 7)
	}
	return []float32{1, sum, float32(len(text) % 5)}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if m.failOn != "" && strings.Contains(text, m.failOn) {
			return nil, fmt.Errorf("provider rejected %q", m.failOn)
		}
		out = append(out, m.vectorFor(text))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

// mockLLM implements driven.LLMService by replaying scripted tokens.
type mockLLM struct {
	mu       sync.Mutex
	tokens   []string
	err      error
	block    chan struct{}
	received [][]driven.ChatMessage
}

func (m *mockLLM) ChatStream(
	ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions, out chan<- driven.StreamEvent,
) error {
	defer close(out)

	m.mu.Lock()
	m.received = append(m.received, messages)
	m.mu.Unlock()

	for i, tok := range m.tokens {
		if m.block != nil && i == 1 {
			<-m.block
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- driven.StreamEvent{Type: driven.StreamToken, Content: tok}:
		}
	}
	if m.err != nil {
		out <- driven.StreamEvent{Type: driven.StreamError, Err: m.err}
		return m.err
	}
	out <- driven.StreamEvent{Type: driven.StreamDone}
	return nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) lastPrompt() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.received) == 0 {
		return nil
	}
	return m.received[len(m.received)-1]
}

// mockPrompts implements driven.PromptStore with fixed templates.
type mockPrompts struct {
	missing string
}

func (m *mockPrompts) Load(name string) (string, error) {
	if name == m.missing {
		return "", errors.New("prompt not found")
	}
	switch name {
	case driven.PromptChatSystem:
		return "You answer from company processes.", nil
	case driven.PromptChatContext:
		return "Context:\n%s\n\nQuestion: %s", nil
	}
	return "", errors.New("unknown prompt")
}

func (m *mockPrompts) Reload() {}

// mockPublisher implements driven.EventPublisher and records events.
type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, payload)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subjects...)
}

// mockNormaliser implements driven.Normaliser for a single MIME type.
type mockNormaliser struct {
	mime  string
	text  string
	err   error
	panic bool
}

func (m *mockNormaliser) SupportedMIMETypes() []string { return []string{m.mime} }
func (m *mockNormaliser) Priority() int                { return 50 }

func (m *mockNormaliser) Normalise(_ context.Context, content *domain.FetchedContent) (string, error) {
	if m.panic {
		panic("corrupt file")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.text != "" {
		return m.text, nil
	}
	return string(content.Data), nil
}

// mockRegistry implements driven.NormaliserRegistry with exact MIME lookup.
type mockRegistry struct {
	byMIME map[string]driven.Normaliser
}

func newMockRegistry(normalisers ...*mockNormaliser) *mockRegistry {
	r := &mockRegistry{byMIME: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

func (r *mockRegistry) Register(n driven.Normaliser) {
	for _, mime := range n.SupportedMIMETypes() {
		r.byMIME[mime] = n
	}
}

func (r *mockRegistry) Get(mime string) driven.Normaliser { return r.byMIME[mime] }

func (r *mockRegistry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	return types
}

// textRegistry decodes text/plain like the production plain text normaliser.
func textRegistry() *mockRegistry {
	return newMockRegistry(&mockNormaliser{mime: "text/plain"})
}

// words returns n distinct whitespace-separated words prefixed by tag.
func words(tag string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", tag, i)
	}
	return strings.Join(parts, " ")
}
