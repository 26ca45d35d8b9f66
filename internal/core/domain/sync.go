package domain

import "time"

// SyncSummary reports the outcome of one sync run.
type SyncSummary struct {
	// FilesFound is the number of files in the source listing.
	FilesFound int

	// FilesProcessed counts documents created or updated.
	FilesProcessed int

	// FilesSkipped counts unchanged files and files without usable text.
	FilesSkipped int

	// FilesFailed counts files whose fetch, embedding or store write failed.
	FilesFailed int

	StartedAt time.Time
	Duration  time.Duration
}

// SyncStatus is the progress of a running sync.
type SyncStatus struct {
	Running     bool
	StartedAt   time.Time
	CurrentFile string
	FilesFound  int
	FilesDone   int
}

// FileStatus is the dry-run verdict for a source file.
type FileStatus string

// Dry-run verdicts.
const (
	FileStatusNew          FileStatus = "new"
	FileStatusUnchanged    FileStatus = "unchanged"
	FileStatusUpdateNeeded FileStatus = "update needed"
	FileStatusUnreadable   FileStatus = "unreadable"
)

// PreviewLength is the number of characters kept in FilePreview.Preview.
const PreviewLength = 200

// FilePreview describes what a sync would do with one file.
type FilePreview struct {
	File     SourceFile
	Status   FileStatus
	Category string

	// ContentMIMEType and ContentLength describe the fetched payload,
	// which differs from the listing for exported files.
	ContentMIMEType string
	ContentLength   int

	// TextLength is the extracted text length in characters.
	TextLength int

	// Preview holds the first PreviewLength characters of the text.
	Preview string

	// Error is set when the file could not be fetched.
	Error string
}
