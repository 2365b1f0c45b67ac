package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedSpeech creates a speech for the given user with a deadline 14 days out.
// Returns a filled domain.Speech.
func SeedSpeech(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) *domain.Speech {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	speech := &domain.Speech{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "Test Speech " + suffix,
		Text:       "Four score and seven years ago our fathers brought forth a new nation.",
		DeadlineAt: now.AddDate(0, 0, 14),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO speeches (id, user_id, title, text, deadline_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		speech.ID, speech.UserID, speech.Title, speech.Text, speech.DeadlineAt, speech.CreatedAt, speech.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSpeech insert: %v", err)
	}

	return speech
}

// SeedCard creates a NEW practice card for an existing speech.
// Returns a filled domain.PracticeCard.
func SeedCard(t *testing.T, pool *pgxpool.Pool, userID, speechID uuid.UUID) *domain.PracticeCard {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	card := &domain.PracticeCard{
		ID:           uuid.New(),
		UserID:       userID,
		SpeechID:     speechID,
		State:        domain.CardStateNew,
		EaseFactor:   2.5,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO practice_cards (id, user_id, speech_id, state, ease_factor, next_review_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.ID, card.UserID, card.SpeechID, string(card.State), card.EaseFactor, card.NextReviewAt, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert: %v", err)
	}

	return card
}

// SeedActiveSession creates an ACTIVE practice session for an existing speech.
// Returns a filled domain.PracticeSession.
func SeedActiveSession(t *testing.T, pool *pgxpool.Pool, userID, speechID uuid.UUID) *domain.PracticeSession {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := &domain.PracticeSession{
		ID:                uuid.New(),
		UserID:            userID,
		SpeechID:          speechID,
		Status:            domain.SessionStatusActive,
		StartedAt:         now,
		VisibilityPercent: 100,
		CreatedAt:         now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO practice_sessions (id, user_id, speech_id, status, started_at, visibility_percent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.UserID, session.SpeechID, string(session.Status), session.StartedAt, session.VisibilityPercent, session.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedActiveSession insert: %v", err)
	}

	return session
}

// SeedMasteryRecord creates a mastery record for one word of a speech.
func SeedMasteryRecord(t *testing.T, pool *pgxpool.Pool, userID, speechID uuid.UUID, word string, correct, missed int) *domain.MasteryRecord {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := &domain.MasteryRecord{
		ID:           uuid.New(),
		UserID:       userID,
		SpeechID:     speechID,
		Word:         word,
		CorrectCount: correct,
		MissedCount:  missed,
		LastSeenAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO mastery_records (id, user_id, speech_id, word, correct_count, missed_count, is_simple, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.UserID, rec.SpeechID, rec.Word, rec.CorrectCount, rec.MissedCount, rec.IsSimple, rec.LastSeenAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMasteryRecord insert: %v", err)
	}

	return rec
}
