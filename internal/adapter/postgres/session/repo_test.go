package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oratoria/oratoria-backend/internal/adapter/postgres/session"
	"github.com/oratoria/oratoria-backend/internal/adapter/postgres/testhelper"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

func newRepo(t *testing.T) (*session.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return session.New(pool), pool
}

func assertIsDomainError(t *testing.T, err, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected error wrapping %v, got: %v", want, err)
	}
}

func sampleResult(completedAt time.Time) domain.SessionResult {
	return domain.SessionResult{
		Verdicts: []domain.WordVerdict{
			{Position: 0, Word: "Four", Verdict: domain.VerdictCorrect, ElapsedMs: 800},
			{Position: 1, Word: "score", Verdict: domain.VerdictHesitated, ElapsedMs: 2600},
			{Position: 2, Word: "and", Verdict: domain.VerdictMissed},
		},
		Counts:            domain.VerdictCounts{Correct: 1, Hesitated: 1, Missed: 1},
		RawAccuracy:       50,
		WeightedAccuracy:  20,
		VisibilityPercent: 100,
		DurationMs:        4200,
		CompletedAt:       completedAt,
	}
}

func TestRepo_Create_AndGetActive(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := repo.Create(ctx, &domain.PracticeSession{
		UserID:            userID,
		SpeechID:          sp.ID,
		Status:            domain.SessionStatusActive,
		StartedAt:         now,
		VisibilityPercent: 80,
	})
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if created.Status != domain.SessionStatusActive {
		t.Errorf("Status mismatch: got %s, want ACTIVE", created.Status)
	}
	if created.VisibilityPercent != 80 {
		t.Errorf("VisibilityPercent mismatch: got %f, want 80", created.VisibilityPercent)
	}

	active, err := repo.GetActive(ctx, userID)
	if err != nil {
		t.Fatalf("GetActive: unexpected error: %v", err)
	}
	if active.ID != created.ID {
		t.Errorf("GetActive ID mismatch: got %s, want %s", active.ID, created.ID)
	}
}

func TestRepo_Create_SecondActiveConflicts(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)
	testhelper.SeedActiveSession(t, pool, userID, sp.ID)

	_, err := repo.Create(ctx, &domain.PracticeSession{
		UserID:    userID,
		SpeechID:  sp.ID,
		Status:    domain.SessionStatusActive,
		StartedAt: time.Now().UTC(),
	})
	assertIsDomainError(t, err, domain.ErrAlreadyExists)
}

func TestRepo_GetActive_NoneIsNotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetActive(ctx, uuid.New())
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_Finish_StoresResult(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)
	active := testhelper.SeedActiveSession(t, pool, userID, sp.ID)

	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	finished, err := repo.Finish(ctx, userID, active.ID, sampleResult(completedAt))
	if err != nil {
		t.Fatalf("Finish: unexpected error: %v", err)
	}

	if finished.Status != domain.SessionStatusFinished {
		t.Errorf("Status mismatch: got %s, want FINISHED", finished.Status)
	}
	if finished.FinishedAt == nil || !finished.FinishedAt.Equal(completedAt) {
		t.Errorf("FinishedAt mismatch: got %v, want %v", finished.FinishedAt, completedAt)
	}
	if finished.Result == nil {
		t.Fatal("expected Result to be populated")
	}
	if finished.Result.RawAccuracy != 50 {
		t.Errorf("RawAccuracy mismatch: got %f, want 50", finished.Result.RawAccuracy)
	}
	if len(finished.Result.Verdicts) != 3 {
		t.Fatalf("verdict count mismatch: got %d, want 3", len(finished.Result.Verdicts))
	}
	if finished.Result.Verdicts[1].Verdict != domain.VerdictHesitated {
		t.Errorf("verdict[1] mismatch: got %s, want HESITATED", finished.Result.Verdicts[1].Verdict)
	}
	if finished.Result.Counts.Missed != 1 {
		t.Errorf("Counts.Missed mismatch: got %d, want 1", finished.Result.Counts.Missed)
	}

	// Round-trip through GetLastFinished.
	last, err := repo.GetLastFinished(ctx, userID, sp.ID)
	if err != nil {
		t.Fatalf("GetLastFinished: unexpected error: %v", err)
	}
	if last.ID != active.ID {
		t.Errorf("GetLastFinished ID mismatch: got %s, want %s", last.ID, active.ID)
	}
	if last.Result == nil || last.Result.DurationMs != 4200 {
		t.Errorf("GetLastFinished Result mismatch: %+v", last.Result)
	}
}

func TestRepo_Finish_AlreadyFinished(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)
	active := testhelper.SeedActiveSession(t, pool, userID, sp.ID)

	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	if _, err := repo.Finish(ctx, userID, active.ID, sampleResult(completedAt)); err != nil {
		t.Fatalf("Finish[1]: unexpected error: %v", err)
	}

	_, err := repo.Finish(ctx, userID, active.ID, sampleResult(completedAt))
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_Abandon(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)
	active := testhelper.SeedActiveSession(t, pool, userID, sp.ID)

	if err := repo.Abandon(ctx, userID, active.ID); err != nil {
		t.Fatalf("Abandon: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, userID, active.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Status != domain.SessionStatusAbandoned {
		t.Errorf("Status mismatch: got %s, want ABANDONED", got.Status)
	}

	// Abandoning again hits no ACTIVE row.
	err = repo.Abandon(ctx, userID, active.ID)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_ListBySpeech(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)

	// Two finished sessions, staggered start times.
	for i := 0; i < 2; i++ {
		active := testhelper.SeedActiveSession(t, pool, userID, sp.ID)
		completedAt := time.Now().UTC().Truncate(time.Microsecond)
		if _, err := repo.Finish(ctx, userID, active.ID, sampleResult(completedAt)); err != nil {
			t.Fatalf("Finish[%d]: unexpected error: %v", i, err)
		}
	}

	sessions, total, err := repo.ListBySpeech(ctx, userID, sp.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListBySpeech: unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total mismatch: got %d, want 2", total)
	}
	if len(sessions) != 2 {
		t.Errorf("session count mismatch: got %d, want 2", len(sessions))
	}
}

func TestRepo_CountToday_AndStreakDays(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	sp := testhelper.SeedSpeech(t, pool, userID)

	active := testhelper.SeedActiveSession(t, pool, userID, sp.ID)
	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	if _, err := repo.Finish(ctx, userID, active.ID, sampleResult(completedAt)); err != nil {
		t.Fatalf("Finish: unexpected error: %v", err)
	}

	dayStart := time.Date(completedAt.Year(), completedAt.Month(), completedAt.Day(), 0, 0, 0, 0, time.UTC)

	count, err := repo.CountToday(ctx, userID, dayStart)
	if err != nil {
		t.Fatalf("CountToday: unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountToday mismatch: got %d, want 1", count)
	}

	days, err := repo.GetStreakDays(ctx, userID, dayStart, 30)
	if err != nil {
		t.Fatalf("GetStreakDays: unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("streak day count mismatch: got %d, want 1", len(days))
	}
	if days[0].Count != 1 {
		t.Errorf("day count mismatch: got %d, want 1", days[0].Count)
	}
	if !days[0].Date.Equal(dayStart) {
		t.Errorf("day date mismatch: got %v, want %v", days[0].Date, dayStart)
	}
}

func TestRepo_AbandonStale(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staleUser := uuid.New()
	staleSpeech := testhelper.SeedSpeech(t, pool, staleUser)
	stale := testhelper.SeedActiveSession(t, pool, staleUser, staleSpeech.ID)

	freshUser := uuid.New()
	freshSpeech := testhelper.SeedSpeech(t, pool, freshUser)
	fresh := testhelper.SeedActiveSession(t, pool, freshUser, freshSpeech.ID)

	// Age the stale session past the cutoff.
	if _, err := pool.Exec(ctx,
		`UPDATE practice_sessions SET started_at = $2 WHERE id = $1`,
		stale.ID, time.Now().UTC().Add(-8*time.Hour)); err != nil {
		t.Fatalf("age session: %v", err)
	}

	abandoned, err := repo.AbandonStale(ctx, time.Now().UTC().Add(-6*time.Hour))
	if err != nil {
		t.Fatalf("AbandonStale: unexpected error: %v", err)
	}
	if abandoned != 1 {
		t.Errorf("abandoned count mismatch: got %d, want 1", abandoned)
	}

	_, err = repo.GetActive(ctx, staleUser)
	assertIsDomainError(t, err, domain.ErrNotFound)

	got, err := repo.GetActive(ctx, freshUser)
	if err != nil {
		t.Fatalf("GetActive fresh: unexpected error: %v", err)
	}
	if got.ID != fresh.ID {
		t.Errorf("fresh session mismatch: got %s, want %s", got.ID, fresh.ID)
	}
}
