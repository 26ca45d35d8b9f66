package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure SyncReconciler implements the interface.
var _ driving.SyncReconciler = (*SyncReconciler)(nil)

// SyncReconciler incrementally mirrors the document source into the
// document store. Files are processed one at a time and a failure on one
// file never affects the others.
type SyncReconciler struct {
	source      driven.DocumentSource
	docStore    driven.DocumentStore
	extractor   *Extractor
	categoriser driven.Categoriser
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	publisher   driven.EventPublisher

	minTextLength int
	now           func() time.Time
	newID         func() string

	running atomic.Bool

	mu     sync.RWMutex
	status domain.SyncStatus
}

// NewSyncReconciler creates a new sync reconciler.
// Files whose trimmed text is shorter than minTextLength are skipped.
func NewSyncReconciler(
	source driven.DocumentSource,
	docStore driven.DocumentStore,
	extractor *Extractor,
	categoriser driven.Categoriser,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	minTextLength int,
) *SyncReconciler {
	return &SyncReconciler{
		source:        source,
		docStore:      docStore,
		extractor:     extractor,
		categoriser:   categoriser,
		chunker:       chunker,
		embedder:      embedder,
		minTextLength: minTextLength,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// SetPublisher sets the publisher for sync.completed events.
func (r *SyncReconciler) SetPublisher(p driven.EventPublisher) {
	r.publisher = p
}

// Sync runs one reconciliation pass over the source listing.
//
// A listing failure is fatal and wraps domain.ErrSourceUnavailable. When ctx
// is cancelled the pass stops before the next file and the partial summary
// is returned together with the context error.
func (r *SyncReconciler) Sync(ctx context.Context) (*domain.SyncSummary, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !r.running.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer r.running.Store(false)

	started := r.now()
	r.setStatus(domain.SyncStatus{Running: true, StartedAt: started})
	defer r.setStatus(domain.SyncStatus{})

	logger.Section("Sync")
	logger.Info("Starting sync from %s", r.source.Name())

	files, err := r.source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %w", domain.ErrSourceUnavailable, err)
	}

	summary := &domain.SyncSummary{FilesFound: len(files), StartedAt: started}
	r.updateStatus(func(s *domain.SyncStatus) { s.FilesFound = len(files) })

	for i := range files {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}

		file := &files[i]
		r.updateStatus(func(s *domain.SyncStatus) {
			s.CurrentFile = file.Name
			s.FilesDone = i
		})

		indexed, err := r.syncFile(ctx, file)
		switch {
		case err != nil && ctx.Err() != nil:
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		case err != nil:
			summary.FilesFailed++
			logger.Warn("Failed to sync %s: %v", file.Name, err)
		case indexed:
			summary.FilesProcessed++
		default:
			summary.FilesSkipped++
		}
	}

	summary.Duration = time.Since(started)
	logger.Info("Sync complete: %d found, %d processed, %d skipped, %d failed",
		summary.FilesFound, summary.FilesProcessed, summary.FilesSkipped, summary.FilesFailed)

	r.publish(ctx, summary)
	return summary, nil
}

// syncFile brings one file's document up to date. It returns false with a
// nil error when the file was skipped.
//
//nolint:gocyclo // Pipeline orchestration with sequential steps
func (r *SyncReconciler) syncFile(ctx context.Context, file *domain.SourceFile) (bool, error) {
	// 1. CHECK FOR CHANGES
	existing, err := r.docStore.FindBySourceFileID(ctx, file.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("find document: %w", err)
	}
	if existing != nil && existing.LastModified == file.LastModified {
		logger.Debug("Unchanged: %s", file.Name)
		return false, nil
	}

	// 2. FETCH
	fetched, err := r.source.Fetch(ctx, *file)
	if err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}

	// 3. EXTRACT
	text, ok := r.extractor.Extract(ctx, fetched.Data, fetched.MIMEType)
	if !ok || utf8.RuneCountInString(strings.TrimSpace(text)) < r.minTextLength {
		logger.Debug("Skipping %s: no usable text", file.Name)
		return false, nil
	}

	// 4. CATEGORISE AND CHUNK
	category := r.categoriser.Categorise(file.Name)
	fragments := r.chunker.Chunk(text)
	if len(fragments) == 0 {
		return false, nil
	}

	// 5. EMBED (before any write so a failure leaves the old state intact)
	vectors, err := r.embedder.EmbedBatch(ctx, fragments)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(fragments) {
		return false, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingFailed, len(vectors), len(fragments))
	}

	// 6. INDEX
	now := r.now()
	doc := &domain.Document{
		ID:              r.newID(),
		SourceFileID:    file.ID,
		Title:           file.Name,
		Category:        category,
		ContentMIMEType: file.MIMEType,
		SourceURL:       file.WebURL,
		Content:         text,
		SizeBytes:       file.SizeBytes,
		LastModified:    file.LastModified,
		CreatedAt:       now,
		SyncedAt:        now,
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	}

	chunks := make([]domain.Chunk, len(fragments))
	for i, fragment := range fragments {
		chunks[i] = domain.Chunk{
			ID:         r.newID(),
			DocumentID: doc.ID,
			Index:      i,
			Text:       fragment,
			Embedding:  vectors[i],
			TokenCount: domain.CountWords(fragment),
		}
	}

	if err := r.docStore.IndexDocument(ctx, doc, chunks); err != nil {
		return false, fmt.Errorf("index document: %w", err)
	}

	logger.Debug("Indexed %s: %d chunks, category %s", file.Name, len(chunks), category)
	return true, nil
}

// Preview reports what Sync would do with each file. It fetches and
// extracts every file but writes nothing.
func (r *SyncReconciler) Preview(ctx context.Context) ([]domain.FilePreview, error) {
	files, err := r.source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %w", domain.ErrSourceUnavailable, err)
	}

	previews := make([]domain.FilePreview, 0, len(files))
	for i := range files {
		if err := ctx.Err(); err != nil {
			return previews, err
		}
		previews = append(previews, r.previewFile(ctx, files[i]))
	}
	return previews, nil
}

func (r *SyncReconciler) previewFile(ctx context.Context, file domain.SourceFile) domain.FilePreview {
	p := domain.FilePreview{
		File:     file,
		Status:   domain.FileStatusNew,
		Category: r.categoriser.Categorise(file.Name),
	}

	existing, err := r.docStore.FindBySourceFileID(ctx, file.ID)
	switch {
	case err == nil && existing.LastModified == file.LastModified:
		p.Status = domain.FileStatusUnchanged
	case err == nil:
		p.Status = domain.FileStatusUpdateNeeded
	case !errors.Is(err, domain.ErrNotFound):
		p.Error = err.Error()
	}

	fetched, err := r.source.Fetch(ctx, file)
	if err != nil {
		p.Status = domain.FileStatusUnreadable
		p.Error = err.Error()
		return p
	}
	p.ContentMIMEType = fetched.MIMEType
	p.ContentLength = len(fetched.Data)

	text, ok := r.extractor.Extract(ctx, fetched.Data, fetched.MIMEType)
	if !ok {
		p.Status = domain.FileStatusUnreadable
		return p
	}
	p.TextLength = utf8.RuneCountInString(text)
	p.Preview = truncateRunes(text, domain.PreviewLength)
	return p
}

// Status returns a snapshot of the running pass. The zero value means idle.
func (r *SyncReconciler) Status() domain.SyncStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *SyncReconciler) setStatus(s domain.SyncStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

func (r *SyncReconciler) updateStatus(fn func(*domain.SyncStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.status)
}

func (r *SyncReconciler) publish(ctx context.Context, summary *domain.SyncSummary) {
	if r.publisher == nil {
		return
	}
	event := driven.SyncCompletedEvent{
		FilesFound:     summary.FilesFound,
		FilesProcessed: summary.FilesProcessed,
		FilesSkipped:   summary.FilesSkipped,
		FilesFailed:    summary.FilesFailed,
		StartedAt:      summary.StartedAt,
		DurationMS:     summary.Duration.Milliseconds(),
	}
	if err := r.publisher.Publish(ctx, driven.SubjectSyncCompleted, event); err != nil {
		logger.Warn("Failed to publish sync event: %v", err)
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
