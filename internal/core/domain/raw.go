package domain

// SourceFile is one entry of the document source's current file listing.
type SourceFile struct {
	// ID is the stable identifier assigned by the source.
	ID string

	// Name is the file name, used as the document title.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// LastModified is the source's change marker.
	LastModified string

	// SizeBytes is the reported file size (0 when unknown).
	SizeBytes int64

	// WebURL links to the file in the source's own UI.
	WebURL string
}

// FetchedContent is the raw payload returned for a SourceFile.
type FetchedContent struct {
	// Data is the raw bytes.
	Data []byte

	// MIMEType is the content type of Data. It differs from the file's
	// declared type when the source converted the file (e.g. export to text).
	MIMEType string
}
