// Package message persists turn part sequences for later rendering.
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/plumechat/plume/internal/db"
	"github.com/plumechat/plume/internal/turn"
)

// Service writes and reads the turn_parts table. What is stored is the
// internal Part sequence exactly as assembled; lowered provider forms are
// never persisted.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "message")),
	}
}

const insertPartQuery = `
INSERT INTO turn_parts (chat_id, turn_id, ordinal, part)
VALUES ($1, $2, $3, $4)
ON CONFLICT (turn_id, ordinal) DO UPDATE SET part = EXCLUDED.part
`

// SaveTurnParts stores one turn's sequence in a single transaction so a
// reader never observes a half-written turn.
func (s *Service) SaveTurnParts(ctx context.Context, chatID, turnID string, parts []turn.Part) error {
	pgChatID, err := dbpkg.ParseUUID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id: %w", err)
	}
	pgTurnID, err := dbpkg.ParseUUID(turnID)
	if err != nil {
		return fmt.Errorf("invalid turn id: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save turn parts: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, part := range parts {
		encoded, err := json.Marshal(part)
		if err != nil {
			return fmt.Errorf("marshal part %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx, insertPartQuery, pgChatID, pgTurnID, i, encoded); err != nil {
			return fmt.Errorf("insert part %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}

const listPartsQuery = `
SELECT part
FROM turn_parts
WHERE turn_id = $1
ORDER BY ordinal ASC
`

// ListTurnParts returns one turn's sequence in assembly order.
func (s *Service) ListTurnParts(ctx context.Context, turnID string) ([]turn.Part, error) {
	pgTurnID, err := dbpkg.ParseUUID(turnID)
	if err != nil {
		return nil, fmt.Errorf("invalid turn id: %w", err)
	}

	rows, err := s.pool.Query(ctx, listPartsQuery, pgTurnID)
	if err != nil {
		return nil, fmt.Errorf("list turn parts: %w", err)
	}
	defer rows.Close()

	var parts []turn.Part
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var part turn.Part
		if err := json.Unmarshal(raw, &part); err != nil {
			return nil, fmt.Errorf("decode stored part: %w", err)
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}
