package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/plumechat/plume/internal/db"
)

// PostgresStore implements Store over the memories table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed memory store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const upsertQuery = `
INSERT INTO memories (user_id, category, key, value, importance, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (user_id, key)
DO UPDATE SET category = EXCLUDED.category,
              value = EXCLUDED.value,
              importance = EXCLUDED.importance,
              updated_at = now()
RETURNING id, user_id, category, key, value, importance, access_count,
          last_accessed_at, created_at, updated_at`

func (s *PostgresStore) Upsert(ctx context.Context, input UpsertInput) (Record, error) {
	if !ValidCategory(input.Category) {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidCategory, input.Category)
	}
	if input.Importance < 1 || input.Importance > 10 {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidImportance, input.Importance)
	}
	row := s.pool.QueryRow(ctx, upsertQuery,
		input.UserID, string(input.Category), input.Key, input.Value, input.Importance)
	record, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("upsert memory: %w", err)
	}
	return record, nil
}

const queryQuery = `
SELECT id, user_id, category, key, value, importance, access_count,
       last_accessed_at, created_at, updated_at
FROM memories
WHERE user_id = $1 AND importance >= $2
ORDER BY importance DESC, updated_at DESC
LIMIT $3`

func (s *PostgresStore) Query(ctx context.Context, input QueryInput) ([]Record, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, queryQuery, input.UserID, input.MinImportance, limit)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, userID, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM memories WHERE user_id = $1 AND key = $2`, userID, key)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStore) TouchAccess(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
UPDATE memories
SET access_count = access_count + 1, last_accessed_at = now()
WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("touch memory access: %w", err)
	}
	return nil
}

// Decay lowers importance by one for records not accessed since cutoff,
// then removes records that fall below importance 1.
func (s *PostgresStore) Decay(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	decayTag, err := s.pool.Exec(ctx, `
UPDATE memories
SET importance = importance - 1, updated_at = now()
WHERE coalesce(last_accessed_at, created_at) < $1`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("decay memories: %w", err)
	}
	deleteTag, err := s.pool.Exec(ctx, `DELETE FROM memories WHERE importance < 1`)
	if err != nil {
		return decayTag.RowsAffected(), 0, fmt.Errorf("prune decayed memories: %w", err)
	}
	return decayTag.RowsAffected(), deleteTag.RowsAffected(), nil
}

// Get returns a single record by user and key.
func (s *PostgresStore) Get(ctx context.Context, userID, key string) (Record, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, user_id, category, key, value, importance, access_count,
       last_accessed_at, created_at, updated_at
FROM memories WHERE user_id = $1 AND key = $2`, userID, key)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("get memory: %w", err)
	}
	return record, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r            Record
		id           pgtype.UUID
		lastAccessed pgtype.Timestamptz
	)
	err := row.Scan(&id, &r.UserID, &r.Category, &r.Key, &r.Value, &r.Importance,
		&r.AccessCount, &lastAccessed, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	r.ID = dbpkg.UUIDToString(id)
	if lastAccessed.Valid {
		t := lastAccessed.Time
		r.LastAccessedAt = &t
	}
	return r, nil
}
