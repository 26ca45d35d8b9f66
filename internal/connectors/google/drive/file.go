package drive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc      = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet    = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides   = "application/vnd.google-apps.presentation"
	MimeTypeGoogleShortcut = "application/vnd.google-apps.shortcut"
	MimeTypeFolder         = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// Size limits for fetched content.
const (
	// MaxExportSize is the maximum size for exported content (5MB).
	MaxExportSize = 5 * 1024 * 1024

	// MaxDownloadSize is the maximum size for downloaded files (25MB).
	MaxDownloadSize = 25 * 1024 * 1024
)

// ErrTooLarge indicates the file exceeds the fetch size limit.
var ErrTooLarge = errors.New("drive: file too large")

// exportFormats maps Google-native types to the format they are exported as.
var exportFormats = map[string]string{
	MimeTypeGoogleDoc:    ExportMimeText,
	MimeTypeGoogleSheet:  ExportMimeCSV,
	MimeTypeGoogleSlides: ExportMimeText,
}

// Fetch returns a file's content. Google-native files are exported; other
// files are downloaded, falling back to a plain-text export when the
// download fails.
func (s *Source) Fetch(ctx context.Context, file domain.SourceFile) (*domain.FetchedContent, error) {
	if exportMime, ok := exportFormats[file.MIMEType]; ok {
		data, err := s.export(ctx, file.ID, exportMime)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", file.Name, err)
		}
		return &domain.FetchedContent{Data: data, MIMEType: exportMime}, nil
	}

	if file.SizeBytes > MaxDownloadSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, file.Name, file.SizeBytes)
	}

	data, err := s.download(ctx, file.ID)
	if err == nil {
		return &domain.FetchedContent{Data: data, MIMEType: file.MIMEType}, nil
	}
	if ctx.Err() != nil || errors.Is(err, ErrTooLarge) {
		return nil, err
	}

	logger.Debug("Direct download failed for %s, trying export as text: %v", file.Name, err)
	text, exportErr := s.export(ctx, file.ID, ExportMimeText)
	if exportErr != nil {
		return nil, fmt.Errorf("download %s: %w", file.Name, errors.Join(err, exportErr))
	}
	return &domain.FetchedContent{Data: text, MIMEType: ExportMimeText}, nil
}

// download fetches a file's binary content.
func (s *Source) download(ctx context.Context, fileID string) ([]byte, error) {
	var data []byte
	err := s.call(ctx, func() error {
		resp, err := s.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = readLimited(resp.Body, MaxDownloadSize)
		return err
	})
	return data, err
}

// export converts a file to exportMime.
func (s *Source) export(ctx context.Context, fileID, exportMime string) ([]byte, error) {
	var data []byte
	err := s.call(ctx, func() error {
		resp, err := s.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = readLimited(resp.Body, MaxExportSize)
		return err
	})
	return data, err
}

// readLimited reads r fully, failing when it exceeds limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
