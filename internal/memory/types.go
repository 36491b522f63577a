// Package memory persists categorized facts about users and renders them
// into prompt context for future turns.
package memory

import (
	"context"
	"time"
)

// Category buckets a memory record. Rendered context sections follow the
// order of CategoryOrder.
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryPreference Category = "preference"
	CategoryContext    Category = "context"
	CategoryFact       Category = "fact"
)

// CategoryOrder is the fixed section order for rendered context.
var CategoryOrder = []Category{CategoryPersonal, CategoryPreference, CategoryContext, CategoryFact}

// Record is a persisted fact about a user. At most one record exists per
// (user_id, key); writes to an existing key update in place.
type Record struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Category       Category   `json:"category"`
	Key            string     `json:"key"`
	Value          string     `json:"value"`
	Importance     int        `json:"importance"`
	AccessCount    int64      `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UpsertInput is the write path for a single record.
type UpsertInput struct {
	UserID     string
	Category   Category
	Key        string
	Value      string
	Importance int
}

// QueryInput filters and bounds a record read.
type QueryInput struct {
	UserID        string
	MinImportance int
	Limit         int
}

// Store is the storage collaborator. Upsert must be atomic on the
// (user_id, key) unique constraint; concurrent writers get
// last-writer-wins semantics, nothing stronger.
type Store interface {
	Upsert(ctx context.Context, input UpsertInput) (Record, error)
	Query(ctx context.Context, input QueryInput) ([]Record, error)
	Delete(ctx context.Context, userID, key string) error
	// TouchAccess bumps access_count and last_accessed_at for the given
	// records, exactly once per id per call.
	TouchAccess(ctx context.Context, ids []string) error
	// Decay ages records not accessed since the cutoff and removes the
	// ones that reach zero importance. Returns (decayed, deleted).
	Decay(ctx context.Context, cutoff time.Time) (int64, int64, error)
}

// Candidate is one fact proposed by a FactExtractor.
type Candidate struct {
	Category Category
	Key      string
	Value    string
}

// FactExtractor scans a plain-text user message for fact-bearing
// patterns. Pluggable so the pattern rules can later be swapped for a
// model-driven extractor without touching the pipeline.
type FactExtractor interface {
	ExtractFacts(text string) []Candidate
}
