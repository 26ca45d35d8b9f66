package drive

import (
	"fmt"

	"github.com/custodia-labs/procdocs/internal/connectors/google"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// DefaultPageSize is the listing page size.
const DefaultPageSize = 100

// Config holds Google Drive source configuration.
type Config struct {
	// FolderID is the root folder to index.
	FolderID string

	// MaxDepth is how many folder levels below FolderID are listed.
	// Zero lists only the root folder's files.
	MaxDepth int

	// PageSize is the page size for list requests.
	PageSize int64

	// RateLimit overrides google.DefaultDriveRateLimit.
	RateLimit *google.RateLimitConfig
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.DriveSettings) Config {
	return Config{
		FolderID: s.FolderID,
		MaxDepth: s.MaxDepth,
	}
}

func (c *Config) validate() error {
	if c.FolderID == "" {
		return fmt.Errorf("%w: drive folder ID is required", domain.ErrInvalidInput)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: drive max depth must not be negative", domain.ErrInvalidInput)
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return nil
}
