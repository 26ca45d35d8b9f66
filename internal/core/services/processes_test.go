package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

func seedProcesses(t *testing.T, store *memory.DocumentStore) {
	t.Helper()
	docs := []struct{ id, title, category, content string }{
		{"1", "Visa Applications", "SOPs", "Check passport validity."},
		{"2", "Expense Claims", "Finance", "Receipts are required for every claim."},
		{"3", "Annual Leave", "HR", "Request leave in the portal."},
		{"4", "Business Travel", "Finance", "Book flights through the travel desk."},
	}
	for _, d := range docs {
		require.NoError(t, store.UpsertDocument(context.Background(), &domain.Document{
			ID:           d.id,
			SourceFileID: "src-" + d.id,
			Title:        d.title,
			Category:     d.category,
			Content:      d.content,
		}))
	}
}

// ==== Process Tests ====

func TestProcessService_List(t *testing.T) {
	store := memory.NewDocumentStore()
	seedProcesses(t, store)
	svc := NewProcessService(store, domain.DefaultMinDocumentLength)

	page, err := svc.List(context.Background(), domain.DocumentQuery{Category: domain.AllCategories})

	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, domain.DefaultPage, page.Page)
	assert.Equal(t, domain.DefaultPageLimit, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
	titles := make([]string, len(page.Documents))
	for i, d := range page.Documents {
		titles[i] = d.Title
		assert.Empty(t, d.Content)
	}
	assert.Equal(t, []string{"Annual Leave", "Business Travel", "Expense Claims", "Visa Applications"}, titles)
}

func TestProcessService_ListFilters(t *testing.T) {
	store := memory.NewDocumentStore()
	seedProcesses(t, store)
	svc := NewProcessService(store, domain.DefaultMinDocumentLength)

	page, err := svc.List(context.Background(), domain.DocumentQuery{Category: "Finance", Search: "TRAVEL"})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, "Business Travel", page.Documents[0].Title)

	page, err = svc.List(context.Background(), domain.DocumentQuery{Search: "receipts"})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1, "search matches content")
	assert.Equal(t, "Expense Claims", page.Documents[0].Title)

	page, err = svc.List(context.Background(), domain.DocumentQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Documents, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestProcessService_Get(t *testing.T) {
	store := memory.NewDocumentStore()
	seedProcesses(t, store)
	svc := NewProcessService(store, domain.DefaultMinDocumentLength)

	doc, err := svc.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Request leave in the portal.", doc.Content)

	_, err = svc.Get(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessService_Categories(t *testing.T) {
	store := memory.NewDocumentStore()
	svc := NewProcessService(store, domain.DefaultMinDocumentLength)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All"}, categories)

	seedProcesses(t, store)
	categories, err = svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Finance", "HR", "SOPs"}, categories)
}

func TestProcessService_EligibleForAssessment(t *testing.T) {
	svc := NewProcessService(memory.NewDocumentStore(), 50)

	assert.False(t, svc.EligibleForAssessment(nil))
	assert.False(t, svc.EligibleForAssessment(&domain.Document{Content: "short"}))
	assert.False(t, svc.EligibleForAssessment(&domain.Document{Content: "  " + strings.Repeat("a", 49) + "  "}))
	assert.True(t, svc.EligibleForAssessment(&domain.Document{Content: strings.Repeat("a", 50)}))
}
