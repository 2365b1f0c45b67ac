package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/pkg/ctxutil"
)

// GetDashboard returns aggregated practice statistics for the user.
func (s *Service) GetDashboard(ctx context.Context) (domain.Dashboard, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Dashboard{}, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dueCount, err := s.cards.CountDue(ctx, userID, now)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count due cards: %w", err)
	}

	practicedToday, err := s.sessions.CountToday(ctx, userID, dayStart)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count practiced today: %w", err)
	}

	statusCounts, err := s.cards.CountByStatus(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count by status: %w", err)
	}

	streakDays, err := s.sessions.GetStreakDays(ctx, userID, dayStart, 365)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("get streak days: %w", err)
	}

	var active *domain.PracticeSession
	session, err := s.sessions.GetActive(ctx, userID)
	if err == nil {
		active = session
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Dashboard{}, fmt.Errorf("get active session: %w", err)
	}

	dashboard := domain.Dashboard{
		DueCount:       dueCount,
		PracticedToday: practicedToday,
		Streak:         calculateStreak(streakDays, dayStart),
		StatusCounts:   statusCounts,
		ActiveSession:  active,
	}

	s.log.InfoContext(ctx, "dashboard loaded",
		slog.String("user_id", userID.String()),
		slog.Int("due_count", dueCount),
		slog.Int("streak", dashboard.Streak),
	)

	return dashboard, nil
}

// GetDueCards returns the cards due for practice, most overdue first.
func (s *Service) GetDueCards(ctx context.Context, limit int) ([]*domain.PracticeCard, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if limit < 0 || limit > 200 {
		return nil, domain.NewValidationError("limit", "must be between 0 and 200")
	}
	if limit == 0 {
		limit = 50
	}

	cards, err := s.cards.GetDueCards(ctx, userID, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}
	return cards, nil
}

// GetSessionHistory returns a speech's finished sessions with pagination.
func (s *Service) GetSessionHistory(ctx context.Context, input SessionHistoryInput) ([]*domain.PracticeSession, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	sessions, total, err := s.sessions.ListBySpeech(ctx, userID, input.SpeechID, limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// GetCardHistory returns the scheduling log of a speech's card.
func (s *Service) GetCardHistory(ctx context.Context, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}
	if speechID == uuid.Nil {
		return nil, 0, domain.NewValidationError("speech_id", "required")
	}
	if limit == 0 {
		limit = 50
	}

	card, err := s.cards.GetBySpeechID(ctx, userID, speechID)
	if err != nil {
		return nil, 0, fmt.Errorf("get card: %w", err)
	}

	logs, total, err := s.logs.GetByCardID(ctx, card.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get practice logs: %w", err)
	}
	return logs, total, nil
}

// ListMastery returns mastery records matching the filter. The struggling
// filter drives the "trouble words" review screen.
func (s *Service) ListMastery(ctx context.Context, input MasteryListInput) ([]*domain.MasteryRecord, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 100
	}

	records, total, err := s.mastery.List(ctx, userID, domain.MasteryFilter{
		SpeechID:   input.SpeechID,
		Struggling: input.Struggling,
		Simple:     input.Simple,
		MinCorrect: input.MinCorrect,
		Limit:      limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list mastery records: %w", err)
	}
	return records, total, nil
}

// calculateStreak counts consecutive days with at least one finished
// session, walking back from today (or yesterday if today is still empty).
// days must be sorted DESC by date.
func calculateStreak(days []domain.DayPracticeCount, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	sameDay := func(a, b time.Time) bool {
		return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
	}

	expected := today
	if !sameDay(days[0].Date, today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range days {
		if !sameDay(d.Date, expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}
