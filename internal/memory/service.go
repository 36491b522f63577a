package memory

import (
	"context"
	"log/slog"
)

// Service wraps the memory store with context rendering and post-turn
// fact extraction.
type Service struct {
	store             Store
	extractor         FactExtractor
	logger            *slog.Logger
	defaultImportance int
}

// NewService creates a memory service. A nil extractor disables post-turn
// extraction; a non-positive defaultImportance falls back to 5.
func NewService(log *slog.Logger, store Store, extractor FactExtractor, defaultImportance int) *Service {
	if log == nil {
		log = slog.Default()
	}
	if defaultImportance < 1 || defaultImportance > 10 {
		defaultImportance = 5
	}
	return &Service{
		store:             store,
		extractor:         extractor,
		logger:            log.With(slog.String("service", "memory")),
		defaultImportance: defaultImportance,
	}
}

// Upsert writes a single record through the store's atomic write path.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (Record, error) {
	if input.Importance == 0 {
		input.Importance = s.defaultImportance
	}
	return s.store.Upsert(ctx, input)
}

// Query reads records for a user.
func (s *Service) Query(ctx context.Context, input QueryInput) ([]Record, error) {
	return s.store.Query(ctx, input)
}

// Delete removes a record by user and key.
func (s *Service) Delete(ctx context.Context, userID, key string) error {
	return s.store.Delete(ctx, userID, key)
}

// ExtractMemories scans the user message for fact-bearing patterns and
// upserts a record per match. Only the user message is scanned; the
// assistant response is accepted for interface stability but unused by
// the rule extractor. Every failure is isolated and logged; extraction
// never affects the turn's outcome.
func (s *Service) ExtractMemories(ctx context.Context, userID, chatID, userMessage, aiResponse string) {
	if s.extractor == nil || userID == "" {
		return
	}
	_ = aiResponse

	for _, candidate := range s.extractor.ExtractFacts(userMessage) {
		_, err := s.store.Upsert(ctx, UpsertInput{
			UserID:     userID,
			Category:   candidate.Category,
			Key:        candidate.Key,
			Value:      candidate.Value,
			Importance: s.defaultImportance,
		})
		if err != nil {
			s.logger.Warn("memory extraction write failed",
				slog.String("user_id", userID),
				slog.String("chat_id", chatID),
				slog.String("key", candidate.Key),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Debug("memory extracted",
			slog.String("user_id", userID),
			slog.String("key", candidate.Key),
		)
	}
}
