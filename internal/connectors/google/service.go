package google

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrNoCredentials indicates no Drive credential was configured.
var ErrNoCredentials = errors.New("google: no credentials configured")

// Credentials selects how the Drive client authenticates. The first
// non-empty field wins, in field order.
type Credentials struct {
	// ServiceAccountJSON is an inline service-account key.
	ServiceAccountJSON string

	// ServiceAccountFile is a path to a service-account key file.
	ServiceAccountFile string

	// AccessToken is a pre-issued OAuth access token.
	AccessToken string
}

// TokenSource resolves the credentials to an oauth2.TokenSource scoped to
// read-only Drive access.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	raw := []byte(c.ServiceAccountJSON)
	if len(raw) == 0 && c.ServiceAccountFile != "" {
		data, err := os.ReadFile(c.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw = data
	}

	if len(raw) > 0 {
		//nolint:staticcheck // SA1019: service-account JSON only
		creds, err := googleoauth.CredentialsFromJSON(ctx, raw, drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	if c.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.AccessToken,
			TokenType:   "Bearer",
		}), nil
	}

	return nil, ErrNoCredentials
}

// NewDriveService creates a Google Drive API service from credentials.
// Extra options are appended, which lets tests point the client at a fake endpoint.
func NewDriveService(ctx context.Context, creds Credentials, opts ...option.ClientOption) (*drive.Service, error) {
	ts, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return drive.NewService(ctx, opts...)
}
