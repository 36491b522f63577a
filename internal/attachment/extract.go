package attachment

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// NoTextPlaceholder is returned when a document parses cleanly but yields
// no extractable text (e.g. an image-only scan). The turn proceeds with
// this visible signal instead of failing.
const NoTextPlaceholder = "[Document contains no extractable text]"

// ExtractDocumentText parses a PDF buffer and returns its concatenated
// page text. Parse failures are classified by inspecting the parser error
// text; this is a best-effort heuristic, not a guarantee.
func ExtractDocumentText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty buffer", ErrCorruptDocument)
	}

	// The parser panics on some malformed inputs; a bad upload must reject
	// the turn, not kill the process.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: parser panic: %v", ErrCorruptDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", classifyParseError(err)
	}

	var allText strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or unreadable page, skip it.
			continue
		}
		allText.WriteString(text)
		allText.WriteString("\n")
	}

	result := allText.String()
	if strings.TrimSpace(result) == "" {
		// Distinct from a parse failure: the document opened fine but
		// carries no text layer.
		return NoTextPlaceholder, nil
	}
	return result, nil
}

// ExtractPlainText decodes bytes as UTF-8 and normalizes line endings.
func ExtractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8 byte sequence", ErrDecodingFailed)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// classifyParseError maps a parser error to the failure taxonomy by
// substring matching on the error text.
func classifyParseError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid password"):
		return fmt.Errorf("%w: %s", ErrPasswordProtected, err)
	case strings.Contains(msg, "encrypted"):
		return fmt.Errorf("%w: %s", ErrEncryptedDocument, err)
	case strings.Contains(msg, "malformed"), strings.Contains(msg, "not a pdf"),
		strings.Contains(msg, "corrupt"), strings.Contains(msg, "startxref"),
		strings.Contains(msg, "trailer"):
		return fmt.Errorf("%w: %s", ErrCorruptDocument, err)
	default:
		return fmt.Errorf("%w: %s", ErrExtractionFailed, err)
	}
}
