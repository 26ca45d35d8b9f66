package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned when no filename rule matches.
const DefaultCategory = "General"

// AllCategories is the pseudo-category that disables category filtering.
const AllCategories = "All"

// Document represents a process document extracted from the document source.
// There is exactly one Document per SourceFileID.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceFileID is the stable identifier of the file in the document source.
	SourceFileID string

	// Title is the human-readable title (the source file name).
	Title string

	// Category is derived from the file name (e.g. "HR", "Finance").
	Category string

	// ContentMIMEType is the declared content type of the source file.
	ContentMIMEType string

	// SourceURL links back to the file in the document source.
	SourceURL string

	// Content is the full extracted text before chunking.
	Content string

	// SizeBytes is the source file size as reported by the source.
	SizeBytes int64

	// LastModified is the source's change marker, copied verbatim.
	// It is only ever compared for equality.
	LastModified string

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// SyncedAt is when the document was last re-indexed.
	SyncedAt time.Time
}

// Chunk is an overlapping word window of a document and the unit of retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document (lookup only).
	DocumentID string

	// Index is the position within the document's chunk sequence, starting at 0.
	Index int

	// Text is the fragment text.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32

	// TokenCount is the number of whitespace-delimited words in Text.
	TokenCount int
}

// ValidateChunkSet checks that chunks form one document's sequence: indices
// 0..n-1 each exactly once and no repeated chunk IDs. Stores call it before
// touching existing rows so a bad set never replaces a good one.
func ValidateChunkSet(chunks []Chunk) error {
	seenIndex := make([]bool, len(chunks))
	seenID := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if c.Index < 0 || c.Index >= len(chunks) || seenIndex[c.Index] {
			return fmt.Errorf("%w: chunk index %d is duplicated or out of sequence", ErrInvalidInput, c.Index)
		}
		seenIndex[c.Index] = true
		if c.ID == "" {
			return fmt.Errorf("%w: chunk %d has no ID", ErrInvalidInput, c.Index)
		}
		if _, ok := seenID[c.ID]; ok {
			return fmt.Errorf("%w: chunk ID %q is repeated", ErrInvalidInput, c.ID)
		}
		seenID[c.ID] = struct{}{}
	}
	return nil
}

// IndexedChunk is a stored chunk together with the document metadata
// needed for source attribution.
type IndexedChunk struct {
	Chunk

	// Title is the parent document's title.
	Title string

	// Category is the parent document's category.
	Category string

	// SourceURL is the parent document's link.
	SourceURL string
}

// RetrievedChunk is an IndexedChunk scored against a query vector.
type RetrievedChunk struct {
	IndexedChunk

	// Score is the cosine similarity with the query vector.
	Score float64
}

// DocumentQuery filters and paginates document browsing.
type DocumentQuery struct {
	// Search is a case-insensitive substring matched against title and content.
	Search string

	// Category restricts results to one category. Empty or "All" disables it.
	Category string

	// Page is 1-based.
	Page int

	// Limit is the page size.
	Limit int
}

// Default pagination values for document browsing.
const (
	DefaultPage      = 1
	DefaultPageLimit = 20
)

// Normalise fills pagination defaults and clears the "All" category.
func (q DocumentQuery) Normalise() DocumentQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Category == AllCategories {
		q.Category = ""
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset returns the number of rows to skip for the query's page.
func (q DocumentQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// DocumentPage is one page of browse results. Documents carry no Content.
type DocumentPage struct {
	Documents  []Document
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// TotalPagesFor returns the page count for total items at the given limit.
func TotalPagesFor(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// CountWords returns the number of whitespace-delimited words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
