package provider

import (
	"fmt"
	"log/slog"

	"github.com/plumechat/plume/internal/turn"
)

// Adapter enforces the gateway's content allow-list on lowered parts.
type Adapter struct {
	logger *slog.Logger
}

func NewAdapter(log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{logger: log.With(slog.String("service", "provider_adapter"))}
}

// AdaptParts filters a lowered sequence down to what the gateway accepts.
// Text parts pass through. Image parts must carry inline data; one
// without it fails the whole sequence since dropping an image the user
// asked about would silently change the question. Unknown part types are
// replaced with a visible diagnostic so the model knows content was
// elided.
func (a *Adapter) AdaptParts(parts []MessagePart) ([]MessagePart, error) {
	out := make([]MessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case PartTypeText:
			out = append(out, part)
		case PartTypeImage:
			if !part.HasInlineData() {
				return nil, ErrMissingInlineImageData
			}
			out = append(out, part)
		default:
			a.logger.Warn("unsupported part type elided", slog.String("type", part.Type))
			out = append(out, MessagePart{
				Type: PartTypeText,
				Text: fmt.Sprintf("[Unsupported content of type %q was omitted]", part.Type),
			})
		}
	}
	return out, nil
}

// Check implements the pipeline's pre-acceptance constraint hook by
// lowering and adapting without keeping the result.
func (a *Adapter) Check(parts []turn.Part) error {
	_, err := a.AdaptParts(Lower(parts))
	return err
}
