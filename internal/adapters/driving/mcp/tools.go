package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// mcpOwner is recorded as the owner of sessions started through MCP.
const mcpOwner = "mcp"

// SearchInput is the input schema for the search_processes tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"what to look for in the process documents"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// SearchOutput is the output schema for the search_processes tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is one retrieved passage.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	URL        string  `json:"url,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about company processes"`
	SessionID string `json:"session_id,omitempty" jsonschema:"continue an earlier conversation"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer"`
	Sources   []SourceOutput `json:"sources"`
}

// SourceOutput is a document cited by an answer.
type SourceOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	URL        string  `json:"url,omitempty"`
	Score      float64 `json:"score"`
}

// ListInput is the input schema for the list_processes tool.
type ListInput struct {
	Search   string `json:"search,omitempty" jsonschema:"case-insensitive text to match in title or content"`
	Category string `json:"category,omitempty" jsonschema:"category filter; All or empty for every category"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number"`
	Limit    int    `json:"limit,omitempty" jsonschema:"page size (default 20)"`
}

// ListOutput is the output schema for the list_processes tool.
type ListOutput struct {
	Documents  []DocumentOutput `json:"documents"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// DocumentOutput summarises an indexed document.
type DocumentOutput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	URL          string `json:"url,omitempty"`
	LastModified string `json:"last_modified"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_processes",
		Description: "Semantic search over the indexed company process documents",
	}, s.handleSearch)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask a question and get an answer grounded in the process documents, with sources",
		}, s.handleAsk)
	}

	if s.ports.Processes != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_processes",
			Description: "List indexed process documents with optional search and category filters",
		}, s.handleList)
	}
}

// handleSearch handles the search_processes tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, input.K)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		r := &results[i]
		output.Results[i] = SearchResultOutput{
			DocumentID: r.DocumentID,
			Title:      r.Title,
			Category:   r.Category,
			URL:        r.SourceURL,
			ChunkIndex: r.Index,
			Score:      r.Score,
			Content:    r.Text,
		}
	}

	return nil, output, nil
}

// handleAsk runs a chat turn and collects the streamed answer.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	events, err := s.ports.Chat.Chat(ctx, domain.ChatRequest{
		SessionID: input.SessionID,
		OwnerID:   mcpOwner,
		Message:   input.Question,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	var (
		output AskOutput
		answer strings.Builder
		done   bool
	)
	for ev := range events {
		switch ev.Type {
		case domain.EventSession:
			output.SessionID = ev.SessionID
		case domain.EventChunk:
			answer.WriteString(ev.Content)
		case domain.EventSources:
			output.Sources = toSourceOutputs(ev.Sources)
		case domain.EventDone:
			done = true
		case domain.EventError:
			return nil, AskOutput{}, errors.New(ev.Message)
		}
	}
	if !done {
		if err := ctx.Err(); err != nil {
			return nil, AskOutput{}, err
		}
		return nil, AskOutput{}, domain.ErrGenerationFailed
	}

	output.Answer = answer.String()
	if output.Sources == nil {
		output.Sources = []SourceOutput{}
	}
	return nil, output, nil
}

// handleList handles the list_processes tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	page, err := s.ports.Processes.List(ctx, domain.DocumentQuery{
		Search:   input.Search,
		Category: input.Category,
		Page:     input.Page,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents:  make([]DocumentOutput, len(page.Documents)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for i := range page.Documents {
		d := &page.Documents[i]
		output.Documents[i] = DocumentOutput{
			ID:           d.ID,
			Title:        d.Title,
			Category:     d.Category,
			URL:          d.SourceURL,
			LastModified: d.LastModified,
		}
	}
	return nil, output, nil
}

func toSourceOutputs(sources []domain.Source) []SourceOutput {
	out := make([]SourceOutput, len(sources))
	for i, src := range sources {
		out[i] = SourceOutput{
			DocumentID: src.DocumentID,
			Title:      src.Title,
			Category:   src.Category,
			URL:        src.SourceURL,
			Score:      src.Score,
		}
	}
	return out
}
