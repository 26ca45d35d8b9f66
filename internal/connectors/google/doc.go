// Package google provides shared infrastructure for the Google Drive source.
//
// It contains:
//   - Credential resolution (service-account JSON or a static access token)
//   - The Drive API client factory
//   - Mapping of googleapi errors to sentinel errors
//   - A rate limiter that respects Drive quotas and 429 backoff
//
// # Usage
//
//	svc, err := google.NewDriveService(ctx, google.Credentials{ServiceAccountJSON: raw})
//	src, err := drive.New(svc, drive.Config{FolderID: id})
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/drive.readonly is requested.
package google
