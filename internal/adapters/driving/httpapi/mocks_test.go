package httpapi

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

var (
	_ driving.SyncReconciler   = (*mockSync)(nil)
	_ driving.ChatOrchestrator = (*mockChat)(nil)
	_ driving.SearchService    = (*mockSearch)(nil)
	_ driving.ProcessService   = (*mockProcesses)(nil)
)

type mockSync struct {
	summary  *domain.SyncSummary
	previews []domain.FilePreview
	status   domain.SyncStatus
	err      error
}

func (m *mockSync) Sync(_ context.Context) (*domain.SyncSummary, error) {
	return m.summary, m.err
}

func (m *mockSync) Preview(_ context.Context) ([]domain.FilePreview, error) {
	return m.previews, m.err
}

func (m *mockSync) Status() domain.SyncStatus {
	return m.status
}

type mockChat struct {
	events   []domain.ChatEvent
	err      error
	history  []domain.ChatMessage
	received domain.ChatRequest
}

func (m *mockChat) Chat(_ context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error) {
	m.received = req
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
	return m.history, m.err
}

type mockSearch struct {
	results []domain.RetrievedChunk
	err     error
	query   string
	k       int
}

func (m *mockSearch) Search(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.query = query
	m.k = k
	return m.results, m.err
}

type mockProcesses struct {
	page       *domain.DocumentPage
	doc        *domain.Document
	categories []string
	err        error
	query      domain.DocumentQuery
}

func (m *mockProcesses) List(_ context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	m.query = query
	return m.page, m.err
}

func (m *mockProcesses) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockProcesses) Categories(_ context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockProcesses) EligibleForAssessment(doc *domain.Document) bool {
	return domain.CountWords(doc.Content) >= 3
}
