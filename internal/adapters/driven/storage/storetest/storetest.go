// Package storetest holds behaviour tests shared by every DocumentStore and
// ChatStore backend.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// DocumentStoreFactory returns an empty store for one subtest.
type DocumentStoreFactory func(t *testing.T) driven.DocumentStore

// ChatStoreFactory returns an empty store for one subtest.
type ChatStoreFactory func(t *testing.T) driven.ChatStore

// NewDocument builds a document for sourceFileID with fixed metadata.
func NewDocument(id, sourceFileID, title, category, content string) *domain.Document {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Document{
		ID:              id,
		SourceFileID:    sourceFileID,
		Title:           title,
		Category:        category,
		ContentMIMEType: "text/plain",
		SourceURL:       "https://drive.example.com/" + sourceFileID,
		Content:         content,
		SizeBytes:       int64(len(content)),
		LastModified:    "2024-01-01T00:00:00.000Z",
		CreatedAt:       now,
		SyncedAt:        now,
	}
}

// NewChunks builds n chunks for documentID with 3-dimensional embeddings.
func NewChunks(documentID string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-chunk-%d", documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       fmt.Sprintf("chunk %d of %s", i, documentID),
			Embedding:  []float32{float32(i), 0.5, -1.25},
			TokenCount: 4,
		}
	}
	return chunks
}

// RunDocumentStoreTests exercises the DocumentStore contract.
//
//nolint:funlen // table of subtests
func RunDocumentStoreTests(t *testing.T, newStore DocumentStoreFactory) {
	ctx := context.Background()

	t.Run("find missing returns not found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.FindBySourceFileID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.GetDocument(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("upsert creates then updates in place", func(t *testing.T) {
		store := newStore(t)
		doc := NewDocument("doc-1", "file-1", "HR Handbook", "HR", "original")
		require.NoError(t, store.UpsertDocument(ctx, doc))

		created, err := store.FindBySourceFileID(ctx, "file-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", created.ID)
		assert.Equal(t, "original", created.Content)

		update := NewDocument("doc-other", "file-1", "HR Handbook v2", "HR", "updated")
		update.CreatedAt = created.CreatedAt.Add(time.Hour)
		update.LastModified = "2024-02-01T00:00:00.000Z"
		require.NoError(t, store.UpsertDocument(ctx, update))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", update.ID, "upsert reports the stored ID")
		assert.Equal(t, "HR Handbook v2", got.Title)
		assert.Equal(t, "updated", got.Content)
		assert.Equal(t, "2024-02-01T00:00:00.000Z", got.LastModified)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "created_at is preserved")

		_, err = store.GetDocument(ctx, "doc-other")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("replace chunks swaps the whole set", func(t *testing.T) {
		store := newStore(t)
		doc := NewDocument("doc-1", "file-1", "Expenses", "Finance", "text")
		require.NoError(t, store.UpsertDocument(ctx, doc))
		require.NoError(t, store.ReplaceChunks(ctx, doc.ID, NewChunks(doc.ID, 3)))

		replacement := NewChunks(doc.ID, 1)
		replacement[0].ID = "fresh"
		require.NoError(t, store.ReplaceChunks(ctx, doc.ID, replacement))

		chunks, err := store.ListAllChunks(ctx)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "fresh", chunks[0].ID)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, []float32{0, 0.5, -1.25}, chunks[0].Embedding)
		assert.Equal(t, "Expenses", chunks[0].Title)
		assert.Equal(t, "Finance", chunks[0].Category)

		_, err = store.GetDocument(ctx, doc.ID)
		assert.NoError(t, err, "dropping chunks keeps the document")
	})

	t.Run("index document upserts and replaces together", func(t *testing.T) {
		store := newStore(t)
		doc := NewDocument("doc-1", "file-1", "Security SOP", "Security", "text")
		require.NoError(t, store.IndexDocument(ctx, doc, NewChunks("doc-1", 2)))

		again := NewDocument("doc-2", "file-1", "Security SOP", "Security", "changed")
		require.NoError(t, store.IndexDocument(ctx, again, NewChunks("doc-2", 3)))
		assert.Equal(t, "doc-1", again.ID)

		chunks, err := store.ListAllChunks(ctx)
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, c := range chunks {
			assert.Equal(t, "doc-1", c.DocumentID)
			assert.Equal(t, i, c.Index)
		}
	})

	t.Run("failed index keeps prior state", func(t *testing.T) {
		store := newStore(t)
		original := NewDocument("doc-1", "file-1", "Refund SOP", "Finance", "v1")
		require.NoError(t, store.IndexDocument(ctx, original, NewChunks("doc-1", 2)))

		broken := NewChunks("doc-1", 3)
		broken[2].Index = 1
		update := NewDocument("doc-1", "file-1", "Refund SOP v2", "Finance", "v2")
		err := store.IndexDocument(ctx, update, broken)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		gapped := NewChunks("doc-1", 2)
		gapped[1].Index = 5
		assert.ErrorIs(t, store.ReplaceChunks(ctx, "doc-1", gapped), domain.ErrInvalidInput)

		assertIndexed(t, store, "doc-1", "Refund SOP", "v1", 2)
	})

	t.Run("chunk conflict rolls back the whole index", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.IndexDocument(ctx, NewDocument("doc-a", "file-a", "Travel", "Policies", "a"), NewChunks("doc-a", 1)))
		require.NoError(t, store.IndexDocument(ctx, NewDocument("doc-b", "file-b", "Payroll", "Finance", "b1"), NewChunks("doc-b", 2)))

		// Chunk IDs are unique across documents, so this insert fails after
		// the document row has already been rewritten.
		clash := NewChunks("doc-b", 2)
		clash[1].ID = "doc-a-chunk-0"
		err := store.IndexDocument(ctx, NewDocument("doc-b", "file-b", "Payroll v2", "Finance", "b2"), clash)
		require.Error(t, err)

		assertIndexed(t, store, "doc-b", "Payroll", "b1", 2)
		assertIndexed(t, store, "doc-a", "Travel", "a", 1)
	})

	t.Run("list all chunks orders by document then index", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"doc-b", "doc-a"} {
			require.NoError(t, store.IndexDocument(ctx, NewDocument(id, "file-"+id, id, "General", "x"), NewChunks(id, 2)))
		}

		chunks, err := store.ListAllChunks(ctx)
		require.NoError(t, err)
		require.Len(t, chunks, 4)
		var order []string
		for _, c := range chunks {
			order = append(order, fmt.Sprintf("%s/%d", c.DocumentID, c.Index))
		}
		assert.Equal(t, []string{"doc-a/0", "doc-a/1", "doc-b/0", "doc-b/1"}, order)
	})

	t.Run("delete document removes chunks", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.IndexDocument(ctx, NewDocument("doc-1", "file-1", "A", "HR", "x"), NewChunks("doc-1", 2)))

		require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

		_, err := store.FindBySourceFileID(ctx, "file-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		chunks, err := store.ListAllChunks(ctx)
		require.NoError(t, err)
		assert.Empty(t, chunks)
		assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
	})

	t.Run("list documents filters sorts and paginates", func(t *testing.T) {
		store := newStore(t)
		docs := []*domain.Document{
			NewDocument("d1", "f1", "Travel Policy", "Policies", "book flights early"),
			NewDocument("d2", "f2", "Expense Claims", "Finance", "submit receipts"),
			NewDocument("d3", "f3", "Accounting SOP", "Finance", "month end close and RECEIPTS"),
			NewDocument("d4", "f4", "Onboarding", "HR", "laptop and badge"),
		}
		for _, d := range docs {
			require.NoError(t, store.UpsertDocument(ctx, d))
		}

		page, err := store.ListDocuments(ctx, domain.DocumentQuery{})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.Limit)
		assert.Equal(t, 1, page.TotalPages)
		require.Len(t, page.Documents, 4)
		assert.Equal(t, "Accounting SOP", page.Documents[0].Title)
		assert.Equal(t, "Travel Policy", page.Documents[3].Title)
		for _, d := range page.Documents {
			assert.Empty(t, d.Content, "browse results omit content")
		}

		page, err = store.ListDocuments(ctx, domain.DocumentQuery{Search: "receipts"})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)

		page, err = store.ListDocuments(ctx, domain.DocumentQuery{Search: "POLICY", Category: "All"})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "d1", page.Documents[0].ID)

		page, err = store.ListDocuments(ctx, domain.DocumentQuery{Category: "Finance", Page: 2, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Documents, 1)
		assert.Equal(t, "Expense Claims", page.Documents[0].Title)

		page, err = store.ListDocuments(ctx, domain.DocumentQuery{Page: 9, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, page.Documents)
		assert.Equal(t, 4, page.Total)
	})

	t.Run("search folds non-ascii case", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.UpsertDocument(ctx,
			NewDocument("d1", "f1", "ÉTÉ Schedule", "HR", "Summer hours")))
		require.NoError(t, store.UpsertDocument(ctx,
			NewDocument("d2", "f2", "Reisekosten", "Finance", "ÖFFNUNGSZEITEN der Kasse")))

		page, err := store.ListDocuments(ctx, domain.DocumentQuery{Search: "été"})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "d1", page.Documents[0].ID)

		page, err = store.ListDocuments(ctx, domain.DocumentQuery{Search: "Öffnungszeiten"})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "d2", page.Documents[0].ID)
	})

	t.Run("categories are distinct and sorted", func(t *testing.T) {
		store := newStore(t)
		for i, c := range []string{"HR", "Finance", "HR", "General"} {
			id := fmt.Sprintf("d%d", i)
			require.NoError(t, store.UpsertDocument(ctx, NewDocument(id, "f"+id, id, c, "x")))
		}

		categories, err := store.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Finance", "General", "HR"}, categories)
	})

	t.Run("concurrent index of distinct documents", func(t *testing.T) {
		store := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("doc-%d", n)
				assert.NoError(t, store.IndexDocument(ctx, NewDocument(id, "file-"+id, id, "General", "x"), NewChunks(id, 2)))
			}(i)
		}
		wg.Wait()

		chunks, err := store.ListAllChunks(ctx)
		require.NoError(t, err)
		assert.Len(t, chunks, 16)
	})
}

// assertIndexed checks a document's stored title, content and chunk count.
func assertIndexed(t *testing.T, store driven.DocumentStore, id, title, content string, chunkCount int) {
	t.Helper()
	doc, err := store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, title, doc.Title)
	assert.Equal(t, content, doc.Content)

	chunks, err := store.ListAllChunks(context.Background())
	require.NoError(t, err)
	var own []domain.IndexedChunk
	for _, c := range chunks {
		if c.DocumentID == id {
			own = append(own, c)
		}
	}
	require.Len(t, own, chunkCount)
	for i, c := range own {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, fmt.Sprintf("%s-chunk-%d", id, i), c.ID)
		assert.Equal(t, title, c.Title)
	}
}

// RunChatStoreTests exercises the ChatStore contract.
func RunChatStoreTests(t *testing.T, newStore ChatStoreFactory) {
	ctx := context.Background()

	t.Run("get missing session", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("create and get session", func(t *testing.T) {
		store := newStore(t)
		session := &domain.ChatSession{ID: "s-1", OwnerID: "user-7", CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
		require.NoError(t, store.CreateSession(ctx, session))

		got, err := store.GetSession(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, "user-7", got.OwnerID)
		assert.True(t, session.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("messages keep append order and sources", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.CreateSession(ctx, &domain.ChatSession{ID: "s-1", CreatedAt: time.Now()}))

		// Identical timestamps must still come back in append order.
		at := time.Now().UTC().Truncate(time.Second)
		msgs := []*domain.ChatMessage{
			{ID: "m-1", SessionID: "s-1", Role: domain.RoleUser, Content: "How do I claim expenses?", CreatedAt: at},
			{ID: "m-2", SessionID: "s-1", Role: domain.RoleAssistant, Content: "Use the portal.", CreatedAt: at,
				Sources: []domain.Source{{DocumentID: "d1", Title: "Expense Claims", Category: "Finance", Score: 0.9}}},
			{ID: "m-3", SessionID: "s-1", Role: domain.RoleUser, Content: "Thanks", CreatedAt: at},
		}
		for _, m := range msgs {
			require.NoError(t, store.AppendMessage(ctx, m))
		}

		got, err := store.ListMessages(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "m-1", got[0].ID)
		assert.Equal(t, "m-2", got[1].ID)
		assert.Equal(t, "m-3", got[2].ID)
		assert.Equal(t, domain.RoleAssistant, got[1].Role)
		require.Len(t, got[1].Sources, 1)
		assert.Equal(t, "Expense Claims", got[1].Sources[0].Title)
		assert.InDelta(t, 0.9, got[1].Sources[0].Score, 1e-9)
		assert.Empty(t, got[0].Sources)
	})

	t.Run("messages for unknown session", func(t *testing.T) {
		store := newStore(t)
		_, err := store.ListMessages(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
