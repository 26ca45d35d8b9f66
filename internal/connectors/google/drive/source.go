// Package drive implements the Google Drive document source.
package drive

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/procdocs/internal/connectors/google"
	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// maxRateLimitAttempts bounds retries of a rate-limited request.
const maxRateLimitAttempts = 3

// listFields are the file fields requested when listing.
const listFields = "nextPageToken, files(id, name, mimeType, modifiedTime, size, webViewLink)"

// Source lists and fetches files under a Drive folder.
type Source struct {
	svc     *drive.Service
	cfg     Config
	limiter *google.RateLimiter
}

// New creates a Drive source.
func New(svc *drive.Service, cfg Config) (*Source, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	limit := google.DefaultDriveRateLimit
	if cfg.RateLimit != nil {
		limit = *cfg.RateLimit
	}
	return &Source{
		svc:     svc,
		cfg:     cfg,
		limiter: google.NewRateLimiter(limit),
	}, nil
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "drive"
}

// ListFiles returns every non-folder file under the root folder, descending
// up to MaxDepth folder levels. Files reachable by more than one path are
// returned once.
func (s *Source) ListFiles(ctx context.Context) ([]domain.SourceFile, error) {
	var files []domain.SourceFile
	seen := make(map[string]bool)
	visited := map[string]bool{s.cfg.FolderID: true}

	var walk func(folderID string, depth int) error
	walk = func(folderID string, depth int) error {
		items, err := s.listFolder(ctx, folderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			switch item.MimeType {
			case MimeTypeFolder:
				if depth >= s.cfg.MaxDepth || visited[item.Id] {
					continue
				}
				visited[item.Id] = true
				if err := walk(item.Id, depth+1); err != nil {
					return err
				}
			case MimeTypeGoogleShortcut:
				continue
			default:
				if seen[item.Id] {
					continue
				}
				seen[item.Id] = true
				files = append(files, toSourceFile(item))
			}
		}
		return nil
	}

	if err := walk(s.cfg.FolderID, 0); err != nil {
		return nil, err
	}
	logger.Debug("Drive listing found %d files under %s", len(files), s.cfg.FolderID)
	return files, nil
}

// childrenQuery selects the live children of folderID. The ID is quoted as a
// Drive query string literal, so quotes and backslashes are escaped.
func childrenQuery(folderID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)
	return "'" + escaped + "' in parents and trashed = false"
}

// listFolder returns the direct children of a folder across all pages.
func (s *Source) listFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	//nolint:prealloc // size unknown from query
	var items []*drive.File
	pageToken := ""
	for {
		var page *drive.FileList
		err := s.call(ctx, func() error {
			call := s.svc.Files.List().
				Q(childrenQuery(folderID)).
				Fields(googleapi.Field(listFields)).
				PageSize(s.cfg.PageSize).
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}
		items = append(items, page.Files...)
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// call runs fn under the rate limiter, backing off and retrying when Drive
// reports rate limiting.
func (s *Source) call(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !google.IsRateLimited(err) || attempt >= maxRateLimitAttempts {
			return google.WrapError(err)
		}
		s.limiter.RecordRateLimitError(google.RetryAfter(err))
		logger.Warn("Drive rate limited, backing off (attempt %d/%d)", attempt, maxRateLimitAttempts)
	}
}

func toSourceFile(f *drive.File) domain.SourceFile {
	return domain.SourceFile{
		ID:           f.Id,
		Name:         f.Name,
		MIMEType:     f.MimeType,
		LastModified: f.ModifiedTime,
		SizeBytes:    f.Size,
		WebURL:       WebURL(f.Id, f.WebViewLink),
	}
}
