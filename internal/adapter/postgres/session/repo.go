// Package session implements the PracticeSession repository using PostgreSQL.
// Verdict lists are stored as jsonb; the scalar result fields live in columns
// so the dashboard can aggregate without unpacking JSON.
package session

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

// Repo provides practice session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const sessionColumns = `id, user_id, speech_id, status, started_at, finished_at,
       visibility_percent, verdicts, correct_count, hesitated_count, skipped_count,
       missed_count, raw_accuracy, weighted_accuracy, duration_ms, created_at`

const createSQL = `
INSERT INTO practice_sessions (id, user_id, speech_id, status, started_at, visibility_percent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + sessionColumns

const getByIDSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE id = $1 AND user_id = $2`

const getActiveSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE user_id = $1 AND status = 'ACTIVE'`

const getLastFinishedSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE user_id = $1 AND speech_id = $2 AND status = 'FINISHED'
ORDER BY finished_at DESC
LIMIT 1`

const finishSQL = `
UPDATE practice_sessions
SET status            = 'FINISHED',
    finished_at       = $3,
    verdicts          = $4,
    correct_count     = $5,
    hesitated_count   = $6,
    skipped_count     = $7,
    missed_count      = $8,
    raw_accuracy      = $9,
    weighted_accuracy = $10,
    duration_ms       = $11
WHERE id = $1 AND user_id = $2 AND status = 'ACTIVE'
RETURNING ` + sessionColumns

const abandonSQL = `
UPDATE practice_sessions
SET status = 'ABANDONED', finished_at = $3
WHERE id = $1 AND user_id = $2 AND status = 'ACTIVE'`

const abandonStaleSQL = `
UPDATE practice_sessions
SET status = 'ABANDONED', finished_at = $2
WHERE status = 'ACTIVE' AND started_at < $1`

const listBySpeechSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE user_id = $1 AND speech_id = $2
ORDER BY started_at DESC
LIMIT $3 OFFSET $4`

const countBySpeechSQL = `
SELECT count(*) FROM practice_sessions
WHERE user_id = $1 AND speech_id = $2`

const countTodaySQL = `
SELECT count(*) FROM practice_sessions
WHERE user_id = $1 AND status = 'FINISHED' AND finished_at >= $2`

const streakDaysSQL = `
SELECT (finished_at AT TIME ZONE 'UTC')::date AS day, count(*)
FROM practice_sessions
WHERE user_id = $1 AND status = 'FINISHED'
  AND finished_at >= $2 - make_interval(days => $3)
GROUP BY day
ORDER BY day DESC`

// Create inserts a new session. A second ACTIVE session for the same user
// violates the partial unique index and maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := session.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	created, err := scanSession(querier.QueryRow(ctx, createSQL,
		id, session.UserID, session.SpeechID, string(session.Status),
		session.StartedAt, session.VisibilityPercent, now))
	if err != nil {
		return nil, postgres.MapError(err, "practice_session", id)
	}

	return created, nil
}

// GetByID returns a session by primary key filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	session, err := scanSession(querier.QueryRow(ctx, getByIDSQL, sessionID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "practice_session", sessionID)
	}

	return session, nil
}

// GetActive returns the user's single ACTIVE session.
// Returns domain.ErrNotFound when there is none.
func (r *Repo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	session, err := scanSession(querier.QueryRow(ctx, getActiveSQL, userID))
	if err != nil {
		return nil, postgres.MapError(err, "practice_session", userID)
	}

	return session, nil
}

// GetLastFinished returns the most recently finished session of a speech.
// Returns domain.ErrNotFound when the speech has never been finished.
func (r *Repo) GetLastFinished(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	session, err := scanSession(querier.QueryRow(ctx, getLastFinishedSQL, userID, speechID))
	if err != nil {
		return nil, postgres.MapError(err, "practice_session", speechID)
	}

	return session, nil
}

// Finish transitions an ACTIVE session to FINISHED and stores the result.
// Returns domain.ErrNotFound if the session is missing, already closed, or
// belongs to another user.
func (r *Repo) Finish(ctx context.Context, userID, sessionID uuid.UUID, result domain.SessionResult) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	verdictsJSON, err := json.Marshal(result.Verdicts)
	if err != nil {
		return nil, fmt.Errorf("marshal verdicts: %w", err)
	}

	session, err := scanSession(querier.QueryRow(ctx, finishSQL,
		sessionID, userID, result.CompletedAt, verdictsJSON,
		result.Counts.Correct, result.Counts.Hesitated, result.Counts.Skipped,
		result.Counts.Missed, result.RawAccuracy, result.WeightedAccuracy,
		result.DurationMs))
	if err != nil {
		return nil, postgres.MapError(err, "practice_session", sessionID)
	}

	return session, nil
}

// Abandon transitions an ACTIVE session to ABANDONED.
// Returns domain.ErrNotFound if the session is missing or already closed.
func (r *Repo) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	tag, err := querier.Exec(ctx, abandonSQL, sessionID, userID, now)
	if err != nil {
		return postgres.MapError(err, "practice_session", sessionID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("practice_session %s: %w", sessionID, domain.ErrNotFound)
	}

	return nil
}

// AbandonStale abandons every ACTIVE session started before the cutoff,
// across all users. Used by the maintenance command to close sessions left
// behind by crashed or disconnected clients.
func (r *Repo) AbandonStale(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	tag, err := querier.Exec(ctx, abandonStaleSQL, cutoff, now)
	if err != nil {
		return 0, postgres.MapError(err, "practice_session", uuid.Nil)
	}

	return tag.RowsAffected(), nil
}

// ListBySpeech returns a page of a speech's sessions, newest first, along
// with the total count.
func (r *Repo) ListBySpeech(ctx context.Context, userID, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeSession, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countBySpeechSQL, userID, speechID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := querier.Query(ctx, listBySpeechSQL, userID, speechID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, total, nil
}

// CountToday returns the number of sessions finished since dayStart.
func (r *Repo) CountToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countTodaySQL, userID, dayStart).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions today: %w", err)
	}

	return count, nil
}

// GetStreakDays returns per-day finished session counts for the last N days,
// newest day first. Days without sessions are absent.
func (r *Repo) GetStreakDays(ctx context.Context, userID uuid.UUID, dayStart time.Time, lastNDays int) ([]domain.DayPracticeCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, streakDaysSQL, userID, dayStart, lastNDays)
	if err != nil {
		return nil, fmt.Errorf("get streak days: %w", err)
	}
	defer rows.Close()

	var days []domain.DayPracticeCount
	for rows.Next() {
		var d domain.DayPracticeCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan streak day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streak days: %w", err)
	}

	if days == nil {
		days = []domain.DayPracticeCount{}
	}

	return days, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSession(row pgx.Row) (*domain.PracticeSession, error) {
	var (
		s            domain.PracticeSession
		status       string
		verdictsJSON []byte
		counts       domain.VerdictCounts
		rawAcc       float64
		weightedAcc  float64
		durationMs   int64
	)

	if err := row.Scan(&s.ID, &s.UserID, &s.SpeechID, &status, &s.StartedAt,
		&s.FinishedAt, &s.VisibilityPercent, &verdictsJSON,
		&counts.Correct, &counts.Hesitated, &counts.Skipped, &counts.Missed,
		&rawAcc, &weightedAcc, &durationMs, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Status = domain.SessionStatus(status)

	if s.Status == domain.SessionStatusFinished && s.FinishedAt != nil {
		result := &domain.SessionResult{
			Counts:            counts,
			RawAccuracy:       rawAcc,
			WeightedAccuracy:  weightedAcc,
			VisibilityPercent: s.VisibilityPercent,
			DurationMs:        durationMs,
			CompletedAt:       *s.FinishedAt,
		}
		if len(verdictsJSON) > 0 {
			if err := json.Unmarshal(verdictsJSON, &result.Verdicts); err != nil {
				return nil, fmt.Errorf("unmarshal verdicts: %w", err)
			}
		}
		s.Result = result
	}

	return &s, nil
}

func scanSessions(rows pgx.Rows) ([]*domain.PracticeSession, error) {
	var sessions []*domain.PracticeSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []*domain.PracticeSession{}
	}

	return sessions, nil
}
