package driven

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// Normaliser decodes raw content of specific MIME types into plain text.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise returns the plain text of content.
	Normalise(ctx context.Context, content *domain.FetchedContent) (string, error)
}

// NormaliserRegistry selects the normaliser for a MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser.
	Register(n Normaliser)

	// Get returns the highest-priority normaliser for mimeType, or nil.
	Get(mimeType string) Normaliser

	// SupportedMIMETypes returns every registered MIME type.
	SupportedMIMETypes() []string
}
