// Package provider lowers assembled turns into the wire format the model
// gateway accepts and enforces the gateway's content constraints.
package provider

import "strings"

// Part type constants for the gateway wire format.
const (
	PartTypeText  = "text"
	PartTypeImage = "image"
)

// Message role constants.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// MessagePart is one unit of gateway message content. Only text parts and
// image parts with an inline data URI are ever sent.
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// HasInlineData reports whether an image part carries its bytes inline.
func (p MessagePart) HasInlineData() bool {
	return strings.HasPrefix(p.URL, "data:")
}

// Message is one gateway chat message.
type Message struct {
	Role    string        `json:"role"`
	Content []MessagePart `json:"content"`
}
