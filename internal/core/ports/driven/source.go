package driven

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// DocumentSource is the external file provider the sync reconciler diffs against.
type DocumentSource interface {
	// Name identifies the source in logs (e.g. "drive", "filesystem").
	Name() string

	// ListFiles returns the current file listing. Folders are never returned.
	ListFiles(ctx context.Context) ([]domain.SourceFile, error)

	// Fetch returns the raw content for a file. Container and office formats
	// may be converted; the returned MIMEType reflects any conversion.
	Fetch(ctx context.Context, file domain.SourceFile) (*domain.FetchedContent, error)
}
