package attachment

import "errors"

var (
	// ErrUnsupportedMediaType indicates the declared media type is outside the allowed set.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrArtifactTooLarge indicates the payload exceeds the configured max artifact size.
	ErrArtifactTooLarge = errors.New("artifact too large")
	// ErrCorruptDocument indicates the document buffer could not be parsed at all.
	ErrCorruptDocument = errors.New("document is corrupt")
	// ErrPasswordProtected indicates the document requires a password to open.
	ErrPasswordProtected = errors.New("document is password-protected")
	// ErrEncryptedDocument indicates the document uses encryption we cannot read.
	ErrEncryptedDocument = errors.New("document is encrypted")
	// ErrExtractionFailed wraps any other document parse failure.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrDecodingFailed indicates a plain-text artifact is not valid UTF-8.
	ErrDecodingFailed = errors.New("text decoding failed")
)
