// Package attachment classifies uploaded artifacts and converts them into
// provider-ready content: extracted text for documents, inline data URIs
// for images.
package attachment

import "time"

// MediaType is the declared MIME type of an uploaded artifact. Only the
// listed values are accepted; everything else is rejected at the upload
// boundary.
type MediaType string

const (
	MediaTypePlainText MediaType = "text/plain"
	MediaTypePDF       MediaType = "application/pdf"
	MediaTypePNG       MediaType = "image/png"
	MediaTypeJPEG      MediaType = "image/jpeg"
)

// Category is the extraction strategy an artifact routes to.
type Category string

const (
	CategoryText     Category = "text"
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
)

// Artifact is a user-submitted file for one turn. Created on upload,
// consumed exactly once by extraction or encoding, never mutated.
type Artifact struct {
	ID        string
	Name      string
	MediaType MediaType
	SizeBytes int64
	Data      []byte
	CreatedAt time.Time
}

// ExtractedKind tags the outcome of processing one artifact.
type ExtractedKind string

const (
	ExtractedText        ExtractedKind = "text"
	ExtractedInlineImage ExtractedKind = "inline_image"
	ExtractedFailure     ExtractedKind = "failure"
)

// Extracted is the single result produced for an artifact. Exactly one of
// Text, DataURI or Err is meaningful depending on Kind; an artifact is
// never partially processed.
type Extracted struct {
	Kind    ExtractedKind
	Text    string
	DataURI string
	Err     error
}
