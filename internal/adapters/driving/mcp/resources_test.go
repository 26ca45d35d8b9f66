package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// makeReadResourceRequest creates a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractProcessID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid process URI", "procdocs://processes/doc-456", "doc-456"},
		{"invalid prefix", "file://processes/doc-456", ""},
		{"nested path", "procdocs://processes/doc-456/extra", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractProcessID(tt.uri))
		})
	}
}

// ==== Categories Resource Tests ====

func TestServer_handleCategoriesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil process service returns All only", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleCategoriesResource(ctx, makeReadResourceRequest("procdocs://categories"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		var cats []string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &cats))
		assert.Equal(t, []string{"All"}, cats)
	})

	t.Run("returns categories", func(t *testing.T) {
		procs := &mockProcessService{categories: []string{"All", "Finance", "HR"}}
		server := newTestServer(t, &Ports{Processes: procs})

		result, err := server.handleCategoriesResource(ctx, makeReadResourceRequest("procdocs://categories"))

		require.NoError(t, err)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Finance")
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Processes: &mockProcessService{err: errors.New("database error")}})

		_, err := server.handleCategoriesResource(ctx, makeReadResourceRequest("procdocs://categories"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing categories")
	})
}

// ==== Process Resource Tests ====

func TestServer_handleProcessResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil process service returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdocs://processes/d1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Processes: &mockProcessService{}})

		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdocs://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Processes: &mockProcessService{err: domain.ErrNotFound}})

		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdocs://processes/gone"))

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "getting process")
	})

	t.Run("returns document content", func(t *testing.T) {
		procs := &mockProcessService{document: &domain.Document{ID: "d1", Content: "Claim within 30 days."}}
		server := newTestServer(t, &Ports{Processes: procs})

		result, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdocs://processes/d1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Claim within 30 days.", result.Contents[0].Text)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		server := newTestServer(t, &Ports{Processes: &mockProcessService{err: errors.New("database error")}})

		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdocs://processes/d1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting process")
	})
}
