// Package speech implements the Speech repository using PostgreSQL.
package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Repo provides speech persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new speech repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const speechColumns = `id, user_id, title, text, deadline_at, created_at, updated_at`

const createSQL = `
INSERT INTO speeches (id, user_id, title, text, deadline_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + speechColumns

const getByIDSQL = `
SELECT ` + speechColumns + `
FROM speeches
WHERE id = $1 AND user_id = $2`

const listSQL = `
SELECT ` + speechColumns + `
FROM speeches
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

const countSQL = `
SELECT count(*) FROM speeches WHERE user_id = $1`

const updateSQL = `
UPDATE speeches
SET title       = COALESCE($3, title),
    text        = COALESCE($4, text),
    deadline_at = COALESCE($5, deadline_at),
    updated_at  = $6
WHERE id = $1 AND user_id = $2
RETURNING ` + speechColumns

const deleteSQL = `
DELETE FROM speeches WHERE id = $1 AND user_id = $2`

// Create inserts a new speech and returns the persisted row.
func (r *Repo) Create(ctx context.Context, speech *domain.Speech) (*domain.Speech, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := speech.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := querier.QueryRow(ctx, createSQL,
		id, speech.UserID, speech.Title, speech.Text, speech.DeadlineAt, now, now)

	created, err := scanSpeech(row)
	if err != nil {
		return nil, postgres.MapError(err, "speech", id)
	}

	return created, nil
}

// GetByID returns a speech by primary key filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, speechID uuid.UUID) (*domain.Speech, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, speechID, userID)

	speech, err := scanSpeech(row)
	if err != nil {
		return nil, postgres.MapError(err, "speech", speechID)
	}

	return speech, nil
}

// List returns a page of the user's speeches ordered by creation time
// (newest first) along with the total count.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Speech, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countSQL, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count speeches: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list speeches: %w", err)
	}
	defer rows.Close()

	speeches, err := scanSpeeches(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list speeches: %w", err)
	}

	return speeches, total, nil
}

// Update applies the non-nil fields of params and returns the updated row.
// Returns domain.ErrNotFound if the speech does not exist or belongs to another user.
func (r *Repo) Update(ctx context.Context, userID, speechID uuid.UUID, params domain.SpeechUpdateParams) (*domain.Speech, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, updateSQL,
		speechID, userID, params.Title, params.Text, params.DeadlineAt, now)

	updated, err := scanSpeech(row)
	if err != nil {
		return nil, postgres.MapError(err, "speech", speechID)
	}

	return updated, nil
}

// Delete removes a speech. Cards, mastery records, sessions and logs attached
// to it go with it via ON DELETE CASCADE.
// Returns domain.ErrNotFound if the speech does not exist or belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, speechID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, speechID, userID)
	if err != nil {
		return postgres.MapError(err, "speech", speechID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("speech %s: %w", speechID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSpeech(row pgx.Row) (*domain.Speech, error) {
	var s domain.Speech
	if err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Text,
		&s.DeadlineAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSpeeches(rows pgx.Rows) ([]*domain.Speech, error) {
	var speeches []*domain.Speech
	for rows.Next() {
		s, err := scanSpeech(rows)
		if err != nil {
			return nil, err
		}
		speeches = append(speeches, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if speeches == nil {
		speeches = []*domain.Speech{}
	}

	return speeches, nil
}
