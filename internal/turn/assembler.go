package turn

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/plumechat/plume/internal/attachment"
)

const (
	// DefaultMaxDocumentChars caps a single document part's rendered text.
	DefaultMaxDocumentChars = 50000
	// TruncationMarker is appended whenever document text is cut; the cut
	// is never silent.
	TruncationMarker = "[... content truncated ...]"
)

// Assembler builds the Part sequence for one turn.
type Assembler struct {
	maxDocumentChars int
	logger           *slog.Logger
}

// NewAssembler creates an assembler with the given document ceiling.
func NewAssembler(log *slog.Logger, maxDocumentChars int) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	if maxDocumentChars <= 0 {
		maxDocumentChars = DefaultMaxDocumentChars
	}
	return &Assembler{
		maxDocumentChars: maxDocumentChars,
		logger:           log.With(slog.String("service", "assembler")),
	}
}

// Assemble produces the turn's Part sequence: attachment-derived parts
// first in submission order, then the free-text parts verbatim, so the
// model reads a document before the instruction that references it.
// extracted[i] must correspond to artifacts[i].
func (a *Assembler) Assemble(artifacts []attachment.Artifact, extracted []attachment.Extracted, texts []string) ([]Part, error) {
	if len(artifacts) != len(extracted) {
		return nil, fmt.Errorf("artifact/result count mismatch: %d vs %d", len(artifacts), len(extracted))
	}

	parts := make([]Part, 0, len(extracted)+len(texts))
	for i, result := range extracted {
		switch result.Kind {
		case attachment.ExtractedText:
			parts = append(parts, a.documentPart(artifacts[i].Name, result.Text))
		case attachment.ExtractedInlineImage:
			parts = append(parts, Part{Kind: PartImage, DataURI: result.DataURI})
		default:
			return nil, fmt.Errorf("artifact %q not extracted: %w", artifacts[i].Name, result.Err)
		}
	}

	for _, text := range texts {
		parts = append(parts, Part{Kind: PartText, Text: text})
	}
	return parts, nil
}

func (a *Assembler) documentPart(name, text string) Part {
	rendered := fmt.Sprintf("[File: %s]\n\n%s", name, text)
	if len(rendered) > a.maxDocumentChars {
		a.logger.Info("document text truncated",
			slog.String("source", name),
			slog.Int("original_chars", len(rendered)),
			slog.Int("ceiling", a.maxDocumentChars),
		)
		// Back off to a rune boundary so the cut never leaves a broken
		// multi-byte sequence ahead of the marker.
		cut := a.maxDocumentChars
		for cut > 0 && !utf8.RuneStart(rendered[cut]) {
			cut--
		}
		rendered = rendered[:cut] + "\n" + TruncationMarker
	}
	return Part{Kind: PartDocumentText, SourceName: name, Text: rendered}
}
