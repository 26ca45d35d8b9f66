package driving

import (
	"context"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// SyncReconciler brings the document store in line with the document source.
type SyncReconciler interface {
	// Sync runs one reconciliation pass. Only one pass runs at a time;
	// concurrent callers receive domain.ErrSyncInProgress.
	Sync(ctx context.Context) (*domain.SyncSummary, error)

	// Preview reports what Sync would do with each file without writing.
	Preview(ctx context.Context) ([]domain.FilePreview, error)

	// Status returns the progress of the running pass.
	Status() domain.SyncStatus
}
