package mcp

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.RetrievedChunk
	err     error
	k       int
}

func (m *mockSearchService) Search(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.k = k
	return m.results, m.err
}

// mockChatOrchestrator is a mock implementation of driving.ChatOrchestrator.
type mockChatOrchestrator struct {
	events   []domain.ChatEvent
	err      error
	received domain.ChatRequest
}

func (m *mockChatOrchestrator) Chat(_ context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error) {
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

func (m *mockChatOrchestrator) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, m.err
}

// mockProcessService is a mock implementation of driving.ProcessService.
type mockProcessService struct {
	page       *domain.DocumentPage
	document   *domain.Document
	categories []string
	err        error
	query      domain.DocumentQuery
}

func (m *mockProcessService) List(_ context.Context, query domain.DocumentQuery) (*domain.DocumentPage, error) {
	m.query = query
	return m.page, m.err
}

func (m *mockProcessService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockProcessService) Categories(_ context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockProcessService) EligibleForAssessment(_ *domain.Document) bool {
	return true
}
