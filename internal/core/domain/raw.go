package domain

// RawDocument represents opaque bytes read from a content source.
// It is the content source's output before normalisation.
type RawDocument struct {
	// SourcePath is the stable identifier relative to the content root.
	SourcePath string

	// Name is the file name including extension.
	Name string

	// MIMEType is the content type when known (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
