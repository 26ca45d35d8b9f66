package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure Retriever and SearchService implement the interfaces.
var (
	_ driving.Retriever     = (*Retriever)(nil)
	_ driving.SearchService = (*SearchService)(nil)
)

// Retriever ranks every stored chunk against a query vector with a linear
// cosine scan.
type Retriever struct {
	docStore driven.DocumentStore
	defaultK int
}

// NewRetriever creates a retriever. defaultK is used when callers pass k <= 0.
func NewRetriever(docStore driven.DocumentStore, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = domain.DefaultTopK
	}
	return &Retriever{docStore: docStore, defaultK: defaultK}
}

// Retrieve returns at most k chunks ordered by score descending, with ties
// broken by document ID and then chunk index. Chunks without a comparable
// embedding are left out.
func (r *Retriever) Retrieve(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = r.defaultK
	}

	results := []domain.RetrievedChunk{}
	queryNorm := norm(query)
	if queryNorm == 0 {
		return results, nil
	}

	chunks, err := r.docStore.ListAllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	for i := range chunks {
		score, ok := cosine(query, queryNorm, chunks[i].Embedding)
		if !ok {
			continue
		}
		results = append(results, domain.RetrievedChunk{IndexedChunk: chunks[i], Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.Index < b.Index
	})

	if len(results) > k {
		results = results[:k]
	}
	logger.Debug("Retrieved %d of %d chunks", len(results), len(chunks))
	return results, nil
}

// cosine returns the cosine similarity of q and v. It reports false when v
// is empty, zero, or of a different dimension.
func cosine(q []float32, qNorm float64, v []float32) (float64, bool) {
	if len(v) != len(q) {
		return 0, false
	}
	vNorm := norm(v)
	if vNorm == 0 {
		return 0, false
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	return dot / (qNorm * vNorm), true
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// SearchService answers free-text semantic queries.
type SearchService struct {
	embedder  driven.EmbeddingService
	retriever driving.Retriever
}

// NewSearchService creates a new search service.
func NewSearchService(embedder driven.EmbeddingService, retriever driving.Retriever) *SearchService {
	return &SearchService{embedder: embedder, retriever: retriever}
}

// Search embeds query and returns the top k chunks. An empty query returns
// no results.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievedChunk{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	return s.retriever.Retrieve(ctx, vector, k)
}
