// Package turn holds the provider-agnostic representation of one chat
// turn and the pipeline that assembles it.
package turn

import (
	"context"

	"github.com/plumechat/plume/internal/attachment"
)

// PartKind tags one unit of turn content.
type PartKind string

const (
	PartText         PartKind = "text"
	PartImage        PartKind = "image"
	PartDocumentText PartKind = "document_text"
)

// Part is the internal unit of turn content. The persisted sequence is
// exactly what the assembler produced; the lowered provider form is never
// stored.
type Part struct {
	Kind       PartKind `json:"kind"`
	Text       string   `json:"text,omitempty"`
	DataURI    string   `json:"data_uri,omitempty"`
	SourceName string   `json:"source_name,omitempty"`
}

// State is the pipeline's per-turn progression. States advance linearly;
// there is no retry loop inside the pipeline.
type State string

const (
	StateCollecting State = "collecting"
	StateExtracting State = "extracting"
	StateAssembling State = "assembling"
	StateAdapting   State = "adapting"
	StateSubmitted  State = "submitted"
	StateRejected   State = "rejected"
)

// ContextLoader loads rendered memory prose for a user.
type ContextLoader interface {
	LoadContext(ctx context.Context, userID string, minImportance, limit int) (string, error)
}

// PartSaver persists the unmodified Part sequence for later UI rendering.
type PartSaver interface {
	SaveTurnParts(ctx context.Context, chatID, turnID string, parts []Part) error
}

// AssembleInput is one turn's raw submission.
type AssembleInput struct {
	UserID    string
	ChatID    string
	TurnID    string
	Texts     []string
	Artifacts []attachment.Artifact
}

// AssembleResult is the pipeline output for a successful turn.
type AssembleResult struct {
	TurnID string
	State  State
	// Parts is the internal sequence, persisted verbatim.
	Parts []Part
	// MemoryContext is rendered memory prose for the system instructions.
	// It is never a Part.
	MemoryContext string
}
