package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

// mockSync implements driving.SyncReconciler for testing.
type mockSync struct {
	summary  *domain.SyncSummary
	previews []domain.FilePreview
	err      error
	status   domain.SyncStatus
	calls    int
}

func (m *mockSync) Sync(_ context.Context) (*domain.SyncSummary, error) {
	m.calls++
	return m.summary, m.err
}

func (m *mockSync) Preview(_ context.Context) ([]domain.FilePreview, error) {
	return m.previews, m.err
}

func (m *mockSync) Status() domain.SyncStatus {
	return m.status
}

// mockChat implements driving.ChatOrchestrator for testing.
type mockChat struct {
	events  []domain.ChatEvent
	err     error
	lastReq domain.ChatRequest
}

func (m *mockChat) Chat(_ context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan domain.ChatEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (m *mockChat) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

// mockSearch implements driving.SearchService for testing.
type mockSearch struct {
	results []domain.RetrievedChunk
	err     error
	lastK   int
}

func (m *mockSearch) Search(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	return m.results, m.err
}

// mockProcesses implements driving.ProcessService for testing.
type mockProcesses struct {
	docs      map[string]*domain.Document
	lastQuery domain.DocumentQuery
}

func (m *mockProcesses) List(_ context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	m.lastQuery = query
	page := &domain.DocumentPage{Page: 1, Limit: 20}
	for _, d := range m.docs {
		doc := *d
		doc.Content = ""
		page.Documents = append(page.Documents, doc)
	}
	page.Total = len(page.Documents)
	page.TotalPages = domain.TotalPagesFor(page.Total, page.Limit)
	return page, nil
}

func (m *mockProcesses) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockProcesses) Categories(_ context.Context) ([]string, error) {
	return []string{domain.AllCategories, "Finance", "HR"}, nil
}

func (m *mockProcesses) EligibleForAssessment(doc *domain.Document) bool {
	return len(doc.Content) >= 50
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	saved       *domain.AppSettings
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(settings *domain.AppSettings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettings) Validate() error                { return m.validateErr }
func (m *mockSettings) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettings) ValidateLLMConfig() error       { return nil }

var (
	_ driving.SyncReconciler   = (*mockSync)(nil)
	_ driving.ChatOrchestrator = (*mockChat)(nil)
	_ driving.SearchService    = (*mockSearch)(nil)
	_ driving.ProcessService   = (*mockProcesses)(nil)
	_ driving.SettingsService  = (*mockSettings)(nil)
)

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	sync      *mockSync
	chat      *mockChat
	search    *mockSearch
	processes *mockProcesses
	settings  *mockSettings
}

func newTestDocument(id, title, category, content string) *domain.Document {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:              id,
		SourceFileID:    "file-" + id,
		Title:           title,
		Category:        category,
		ContentMIMEType: "text/plain",
		SourceURL:       "https://drive.google.com/file/d/" + id + "/view",
		Content:         content,
		CreatedAt:       created,
		SyncedAt:        created,
	}
}

// setupTestServices installs mock services and returns a cleanup function
// that restores the previous services and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		sync: &mockSync{summary: &domain.SyncSummary{
			FilesFound: 3, FilesProcessed: 2, FilesSkipped: 1, Duration: 1500 * time.Millisecond,
		}},
		chat: &mockChat{events: []domain.ChatEvent{
			{Type: domain.EventSession, SessionID: "session-1"},
			{Type: domain.EventChunk, Content: "Submit the form "},
			{Type: domain.EventChunk, Content: "to HR."},
			{Type: domain.EventSources, Sources: []domain.Source{{
				DocumentID: "doc-1", Title: "HR Leave Policy", Category: "HR",
				SourceURL: "https://example.com/leave", Score: 0.91,
			}}},
			{Type: domain.EventDone},
		}},
		search: &mockSearch{results: []domain.RetrievedChunk{{
			IndexedChunk: domain.IndexedChunk{
				Chunk:     domain.Chunk{ID: "c1", DocumentID: "doc-1", Text: "Leave requests   need\napproval."},
				Title:     "HR Leave Policy",
				Category:  "HR",
				SourceURL: "https://example.com/leave",
			},
			Score: 0.87,
		}}},
		processes: &mockProcesses{docs: map[string]*domain.Document{
			"doc-1": newTestDocument("doc-1", "HR Leave Policy", "HR",
				"Employees request leave through the portal at least two weeks in advance."),
		}},
		settings: &mockSettings{settings: domain.DefaultAppSettings()},
	}

	oldSync, oldChat, oldSearch := syncService, chatService, searchService
	oldProcesses, oldSettings, oldAddr := processService, settingsService, serverAddr
	oldBootstrap, oldInput := bootstrap, settingsInput

	SetServices(&Services{
		Sync:      ts.sync,
		Chat:      ts.chat,
		Search:    ts.search,
		Processes: ts.processes,
		Settings:  ts.settings,
	})
	bootstrap = nil

	return ts, func() {
		syncService, chatService, searchService = oldSync, oldChat, oldSearch
		processService, settingsService, serverAddr = oldProcesses, oldSettings, oldAddr
		bootstrap, settingsInput = oldBootstrap, oldInput
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	syncDryRun, syncJSON = false, false
	searchLimit, searchJSON = domain.DefaultTopK, false
	askSession, chatSession = "", ""
	processCategory, processSearch = "", ""
	processPage, processLimit, processJSON = domain.DefaultPage, domain.DefaultPageLimit, false
	serveAddr = ""
	configDir, verbose, logFormat = "", false, "text"
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
