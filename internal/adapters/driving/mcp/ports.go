package mcp

import (
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search provides semantic search.
	Search driving.SearchService

	// Chat answers questions. The ask tool is only registered when set.
	Chat driving.ChatOrchestrator

	// Processes browses indexed documents.
	Processes driving.ProcessService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
