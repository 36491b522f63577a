package provider

import "github.com/plumechat/plume/internal/turn"

// Lower converts the internal Part sequence into gateway message parts.
// The mapping is mechanical and order preserving; constraint enforcement
// belongs to the adapter, never here.
func Lower(parts []turn.Part) []MessagePart {
	out := make([]MessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case turn.PartText, turn.PartDocumentText:
			out = append(out, MessagePart{Type: PartTypeText, Text: part.Text})
		case turn.PartImage:
			out = append(out, MessagePart{Type: PartTypeImage, URL: part.DataURI})
		default:
			// Unknown kinds pass through with their tag intact so the
			// adapter can report them.
			out = append(out, MessagePart{Type: string(part.Kind), Text: part.Text})
		}
	}
	return out
}
