// Package practicelog implements the PracticeLog repository using PostgreSQL.
// The pre-session card snapshot is stored as jsonb.
package practicelog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Repo provides practice log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new practice log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const logColumns = `id, card_id, user_id, session_id, rating, rating_known, prev_state, duration_ms, practiced_at`

const createSQL = `
INSERT INTO practice_logs (id, card_id, user_id, session_id, rating, rating_known, prev_state, duration_ms, practiced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + logColumns

const getByCardIDSQL = `
SELECT ` + logColumns + `
FROM practice_logs
WHERE card_id = $1
ORDER BY practiced_at DESC
LIMIT $2 OFFSET $3`

const countByCardIDSQL = `
SELECT count(*) FROM practice_logs WHERE card_id = $1`

// Create inserts a log row and returns the persisted record.
func (r *Repo) Create(ctx context.Context, log *domain.PracticeLog) (*domain.PracticeLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := log.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	practicedAt := log.PracticedAt
	if practicedAt.IsZero() {
		practicedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	var prevStateJSON []byte
	if log.PrevState != nil {
		var err error
		prevStateJSON, err = json.Marshal(log.PrevState)
		if err != nil {
			return nil, fmt.Errorf("marshal prev state: %w", err)
		}
	}

	created, err := scanLog(querier.QueryRow(ctx, createSQL,
		id, log.CardID, log.UserID, log.SessionID, string(log.Rating),
		log.RatingKnown, prevStateJSON, log.DurationMs, practicedAt))
	if err != nil {
		return nil, postgres.MapError(err, "practice_log", id)
	}

	return created, nil
}

// GetByCardID returns a page of a card's logs, newest first, along with the
// total count.
func (r *Repo) GetByCardID(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countByCardIDSQL, cardID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count practice logs: %w", err)
	}

	rows, err := querier.Query(ctx, getByCardIDSQL, cardID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get practice logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanLogs(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("get practice logs: %w", err)
	}

	return logs, total, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanLog(row pgx.Row) (*domain.PracticeLog, error) {
	var (
		l             domain.PracticeLog
		rating        string
		prevStateJSON []byte
	)

	if err := row.Scan(&l.ID, &l.CardID, &l.UserID, &l.SessionID, &rating,
		&l.RatingKnown, &prevStateJSON, &l.DurationMs, &l.PracticedAt); err != nil {
		return nil, err
	}
	l.Rating = domain.PracticeRating(rating)

	if len(prevStateJSON) > 0 {
		var snapshot domain.CardSnapshot
		if err := json.Unmarshal(prevStateJSON, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal prev state: %w", err)
		}
		l.PrevState = &snapshot
	}

	return &l, nil
}

func scanLogs(rows pgx.Rows) ([]*domain.PracticeLog, error) {
	var logs []*domain.PracticeLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if logs == nil {
		logs = []*domain.PracticeLog{}
	}

	return logs, nil
}
