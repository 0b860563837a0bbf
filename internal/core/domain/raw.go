package domain

// RawDocument is an imported file before normalisation.
type RawDocument struct {
	// URI is the original location, usually a file path.
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// NormalisedDocument is the text extracted from a RawDocument.
type NormalisedDocument struct {
	// Title is the document title when the format carries one.
	Title string

	// Filename is the base name used as the chunk source.
	Filename string

	// Content is the plain text body.
	Content string

	// Sections are the top-level headings in document order, if any.
	Sections []Section
}

// Section is a headed span of a normalised document.
type Section struct {
	Heading string
	Offset  int
}
