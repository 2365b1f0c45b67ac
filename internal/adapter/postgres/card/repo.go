// Package card implements the PracticeCard repository using PostgreSQL.
package card

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

// Repo provides practice card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new card repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const cardColumns = `id, user_id, speech_id, state, interval_minutes, ease_factor,
       learning_step, consecutive_struggles, last_accuracy, performance_trend,
       next_review_at, review_count, created_at, updated_at`

const createSQL = `
INSERT INTO practice_cards (id, user_id, speech_id, state, ease_factor, next_review_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING ` + cardColumns

const getByIDSQL = `
SELECT ` + cardColumns + `
FROM practice_cards
WHERE id = $1 AND user_id = $2`

const getBySpeechIDSQL = `
SELECT ` + cardColumns + `
FROM practice_cards
WHERE speech_id = $1 AND user_id = $2`

const updateSRSSQL = `
UPDATE practice_cards
SET state                 = $3,
    interval_minutes      = $4,
    ease_factor           = $5,
    learning_step         = $6,
    consecutive_struggles = $7,
    last_accuracy         = $8,
    performance_trend     = $9,
    next_review_at        = $10,
    review_count          = $11,
    updated_at            = $12
WHERE id = $1 AND user_id = $2
RETURNING ` + cardColumns

const getDueCardsSQL = `
SELECT c.id, c.user_id, c.speech_id, c.state, c.interval_minutes, c.ease_factor,
       c.learning_step, c.consecutive_struggles, c.last_accuracy, c.performance_trend,
       c.next_review_at, c.review_count, c.created_at, c.updated_at
FROM practice_cards c
JOIN speeches s ON c.speech_id = s.id
WHERE c.user_id = $1
  AND (c.state = 'NEW' OR c.next_review_at <= $2)
ORDER BY
  CASE WHEN c.state = 'NEW' THEN 1 ELSE 0 END,
  s.deadline_at ASC,
  c.next_review_at ASC
LIMIT $3`

const countDueSQL = `
SELECT count(*) FROM practice_cards c
WHERE c.user_id = $1
  AND (c.state = 'NEW' OR c.next_review_at <= $2)`

const countByStateSQL = `
SELECT state, count(*) FROM practice_cards
WHERE user_id = $1
GROUP BY state`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a card by primary key filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, cardID uuid.UUID) (*domain.PracticeCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	card, err := scanCard(querier.QueryRow(ctx, getByIDSQL, cardID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "practice_card", cardID)
	}

	return card, nil
}

// GetBySpeechID returns the card of a speech filtered by user_id.
func (r *Repo) GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	card, err := scanCard(querier.QueryRow(ctx, getBySpeechIDSQL, speechID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "practice_card", speechID)
	}

	return card, nil
}

// GetDueCards returns cards that need practice, deadline-nearest speeches
// first, then by next_review_at. NEW cards come last.
func (r *Repo) GetDueCards(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.PracticeCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getDueCardsSQL, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}

	return cards, nil
}

// CountDue returns the count of cards due for practice.
func (r *Repo) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}

	return count, nil
}

// CountByStatus returns card counts grouped by scheduler state.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, countByStateSQL, userID)
	if err != nil {
		return domain.CardStatusCounts{}, fmt.Errorf("count cards by state: %w", err)
	}
	defer rows.Close()

	var counts domain.CardStatusCounts
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return domain.CardStatusCounts{}, fmt.Errorf("scan state count: %w", err)
		}

		switch domain.CardState(state) {
		case domain.CardStateNew:
			counts.New = count
		case domain.CardStateLearning:
			counts.Learning = count
		case domain.CardStateReview:
			counts.Review = count
		case domain.CardStateRelearning:
			counts.Relearning = count
		}
		counts.Total += count
	}
	if err := rows.Err(); err != nil {
		return domain.CardStatusCounts{}, fmt.Errorf("iterate state counts: %w", err)
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a NEW card for a speech.
// A duplicate speech_id results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, userID, speechID uuid.UUID, ease float64) (*domain.PracticeCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	card, err := scanCard(querier.QueryRow(ctx, createSQL,
		id, userID, speechID, string(domain.CardStateNew), ease, now, now))
	if err != nil {
		return nil, postgres.MapError(err, "practice_card", id)
	}

	return card, nil
}

// UpdateSRS persists all scheduler fields on a card and returns the updated row.
// Returns domain.ErrNotFound if the card does not exist or belongs to another user.
func (r *Repo) UpdateSRS(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) (*domain.PracticeCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	card, err := scanCard(querier.QueryRow(ctx, updateSRSSQL,
		cardID, userID,
		string(params.State), params.IntervalMinutes, params.EaseFactor,
		params.LearningStep, params.ConsecutiveStruggles, params.LastAccuracy,
		params.PerformanceTrend, params.NextReviewAt, params.ReviewCount, now))
	if err != nil {
		return nil, postgres.MapError(err, "practice_card", cardID)
	}

	return card, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanCard(row pgx.Row) (*domain.PracticeCard, error) {
	var c domain.PracticeCard
	var state string
	if err := row.Scan(&c.ID, &c.UserID, &c.SpeechID, &state, &c.IntervalMinutes,
		&c.EaseFactor, &c.LearningStep, &c.ConsecutiveStruggles, &c.LastAccuracy,
		&c.PerformanceTrend, &c.NextReviewAt, &c.ReviewCount,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.State = domain.CardState(state)
	return &c, nil
}

func scanCards(rows pgx.Rows) ([]*domain.PracticeCard, error) {
	var cards []*domain.PracticeCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if cards == nil {
		cards = []*domain.PracticeCard{}
	}

	return cards, nil
}
