package memory

import (
	"context"
	"log/slog"
	"strings"
)

// Default bounds for context loading. They exist to keep prompt size in
// check, not as semantic requirements.
const (
	DefaultMinImportance = 5
	DefaultContextLimit  = 20
)

var categoryHeadings = map[Category]string{
	CategoryPersonal:   "About the user",
	CategoryPreference: "User preferences",
	CategoryContext:    "Current context",
	CategoryFact:       "Known facts",
}

// ContextOptions bounds a LoadContext call.
type ContextOptions struct {
	MinImportance int
	Limit         int
}

func (o ContextOptions) withDefaults() ContextOptions {
	if o.MinImportance <= 0 {
		o.MinImportance = DefaultMinImportance
	}
	if o.Limit <= 0 {
		o.Limit = DefaultContextLimit
	}
	return o
}

// LoadContext retrieves the highest-importance records for a user and
// renders them as headed prose for the system instructions. Returned
// records get their access stats bumped once per call; a failed bump is
// logged but does not fail the load.
func (s *Service) LoadContext(ctx context.Context, userID string, opts ContextOptions) (string, error) {
	opts = opts.withDefaults()

	records, err := s.store.Query(ctx, QueryInput{
		UserID:        userID,
		MinImportance: opts.MinImportance,
		Limit:         opts.Limit,
	})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if err := s.store.TouchAccess(ctx, ids); err != nil {
		s.logger.Warn("memory access tracking failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return renderContext(records), nil
}

// renderContext groups records by category and emits headed sections in
// the fixed category order, omitting empty categories. Records keep their
// query order (importance desc, recency desc) within a section.
func renderContext(records []Record) string {
	grouped := make(map[Category][]Record, len(categoryHeadings))
	for _, r := range records {
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	var sb strings.Builder
	for _, category := range CategoryOrder {
		entries := grouped[category]
		if len(entries) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(categoryHeadings[category])
		sb.WriteString(":\n")
		for _, r := range entries {
			sb.WriteString("- ")
			sb.WriteString(r.Key)
			sb.WriteString(": ")
			sb.WriteString(r.Value)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
