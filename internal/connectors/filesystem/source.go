// Package filesystem implements a document source backed by a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// MaxFileSize is the largest file Fetch will read (25MB).
const MaxFileSize = 25 * 1024 * 1024

// ErrTooLarge indicates the file exceeds MaxFileSize.
var ErrTooLarge = errors.New("filesystem: file too large")

// fallbackMIMETypes covers extensions the platform MIME table may not know.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".csv":      "text/csv",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".html":     "text/html",
	".htm":      "text/html",
}

// Source lists regular files under a root directory. File IDs are
// slash-separated paths relative to the root.
type Source struct {
	root string
}

// New creates a filesystem source rooted at root.
func New(root string) *Source {
	return &Source{root: root}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "filesystem"
}

// Validate checks that the root exists and is a directory.
func (s *Source) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", domain.ErrSourceUnavailable, s.root)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrSourceUnavailable, s.root)
	}
	return nil
}

// ListFiles walks the root and returns every visible regular file.
// Hidden files and directories are skipped.
func (s *Source) ListFiles(ctx context.Context) ([]domain.SourceFile, error) {
	if err := s.Validate(ctx); err != nil {
		return nil, err
	}

	var files []domain.SourceFile
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == s.root {
				return walkErr
			}
			logger.Warn("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}

		id := filepath.ToSlash(rel)
		files = append(files, domain.SourceFile{
			ID:           id,
			Name:         d.Name(),
			MIMEType:     detectMIMEType(d.Name()),
			LastModified: info.ModTime().UTC().Format(time.RFC3339Nano),
			SizeBytes:    info.Size(),
			WebURL:       s.webURL(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Fetch reads a listed file.
func (s *Source) Fetch(ctx context.Context, file domain.SourceFile) (*domain.FetchedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(file.ID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.ID, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.ID, err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, file.ID)
	}

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = detectMIMEType(path)
	}
	return &domain.FetchedContent{Data: data, MIMEType: mimeType}, nil
}

// resolve maps a file ID back to a path, refusing IDs that escape the root.
func (s *Source) resolve(id string) (string, error) {
	if id == "" || !filepath.IsLocal(filepath.FromSlash(id)) {
		return "", fmt.Errorf("%w: invalid file ID %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.root, filepath.FromSlash(id)), nil
}

func (s *Source) webURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// detectMIMEType guesses a MIME type from the file extension.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if mimeType, ok := fallbackMIMETypes[ext]; ok {
		return mimeType
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
