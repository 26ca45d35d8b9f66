// Package connectors holds the document sources that feed the sync
// reconciler. Each subpackage implements driven.DocumentSource:
//
//   - google/drive lists and exports files under a Google Drive folder
//   - filesystem walks a local directory
//
// The google package holds the credential, error and rate-limit helpers
// shared by Google API clients.
package connectors
