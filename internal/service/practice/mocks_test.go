package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Hand-rolled Func-field mocks for the private repo interfaces. A nil Func
// panics so a test immediately exposes an unexpected repo call.

var _ speechRepo = &speechRepoMock{}

type speechRepoMock struct {
	CreateFunc  func(ctx context.Context, speech *domain.Speech) (*domain.Speech, error)
	GetByIDFunc func(ctx context.Context, userID, speechID uuid.UUID) (*domain.Speech, error)
	ListFunc    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Speech, int, error)
	UpdateFunc  func(ctx context.Context, userID, speechID uuid.UUID, params domain.SpeechUpdateParams) (*domain.Speech, error)
	DeleteFunc  func(ctx context.Context, userID, speechID uuid.UUID) error
}

func (m *speechRepoMock) Create(ctx context.Context, speech *domain.Speech) (*domain.Speech, error) {
	if m.CreateFunc == nil {
		panic("speechRepoMock.CreateFunc is nil")
	}
	return m.CreateFunc(ctx, speech)
}

func (m *speechRepoMock) GetByID(ctx context.Context, userID, speechID uuid.UUID) (*domain.Speech, error) {
	if m.GetByIDFunc == nil {
		panic("speechRepoMock.GetByIDFunc is nil")
	}
	return m.GetByIDFunc(ctx, userID, speechID)
}

func (m *speechRepoMock) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Speech, int, error) {
	if m.ListFunc == nil {
		panic("speechRepoMock.ListFunc is nil")
	}
	return m.ListFunc(ctx, userID, limit, offset)
}

func (m *speechRepoMock) Update(ctx context.Context, userID, speechID uuid.UUID, params domain.SpeechUpdateParams) (*domain.Speech, error) {
	if m.UpdateFunc == nil {
		panic("speechRepoMock.UpdateFunc is nil")
	}
	return m.UpdateFunc(ctx, userID, speechID, params)
}

func (m *speechRepoMock) Delete(ctx context.Context, userID, speechID uuid.UUID) error {
	if m.DeleteFunc == nil {
		panic("speechRepoMock.DeleteFunc is nil")
	}
	return m.DeleteFunc(ctx, userID, speechID)
}

var _ cardRepo = &cardRepoMock{}

type cardRepoMock struct {
	GetBySpeechIDFunc func(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeCard, error)
	GetByIDFunc       func(ctx context.Context, userID, cardID uuid.UUID) (*domain.PracticeCard, error)
	CreateFunc        func(ctx context.Context, userID, speechID uuid.UUID, ease float64) (*domain.PracticeCard, error)
	UpdateSRSFunc     func(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) (*domain.PracticeCard, error)
	GetDueCardsFunc   func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.PracticeCard, error)
	CountDueFunc      func(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByStatusFunc func(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error)
}

func (m *cardRepoMock) GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeCard, error) {
	if m.GetBySpeechIDFunc == nil {
		panic("cardRepoMock.GetBySpeechIDFunc is nil")
	}
	return m.GetBySpeechIDFunc(ctx, userID, speechID)
}

func (m *cardRepoMock) GetByID(ctx context.Context, userID, cardID uuid.UUID) (*domain.PracticeCard, error) {
	if m.GetByIDFunc == nil {
		panic("cardRepoMock.GetByIDFunc is nil")
	}
	return m.GetByIDFunc(ctx, userID, cardID)
}

func (m *cardRepoMock) Create(ctx context.Context, userID, speechID uuid.UUID, ease float64) (*domain.PracticeCard, error) {
	if m.CreateFunc == nil {
		panic("cardRepoMock.CreateFunc is nil")
	}
	return m.CreateFunc(ctx, userID, speechID, ease)
}

func (m *cardRepoMock) UpdateSRS(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) (*domain.PracticeCard, error) {
	if m.UpdateSRSFunc == nil {
		panic("cardRepoMock.UpdateSRSFunc is nil")
	}
	return m.UpdateSRSFunc(ctx, userID, cardID, params)
}

func (m *cardRepoMock) GetDueCards(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.PracticeCard, error) {
	if m.GetDueCardsFunc == nil {
		panic("cardRepoMock.GetDueCardsFunc is nil")
	}
	return m.GetDueCardsFunc(ctx, userID, now, limit)
}

func (m *cardRepoMock) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	if m.CountDueFunc == nil {
		panic("cardRepoMock.CountDueFunc is nil")
	}
	return m.CountDueFunc(ctx, userID, now)
}

func (m *cardRepoMock) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error) {
	if m.CountByStatusFunc == nil {
		panic("cardRepoMock.CountByStatusFunc is nil")
	}
	return m.CountByStatusFunc(ctx, userID)
}

var _ masteryRepo = &masteryRepoMock{}

type masteryRepoMock struct {
	GetBySpeechIDFunc func(ctx context.Context, userID, speechID uuid.UUID) ([]*domain.MasteryRecord, error)
	UpsertFunc        func(ctx context.Context, userID, speechID uuid.UUID, records []*domain.MasteryRecord) error
	ListFunc          func(ctx context.Context, userID uuid.UUID, filter domain.MasteryFilter) ([]*domain.MasteryRecord, int, error)
}

func (m *masteryRepoMock) GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) ([]*domain.MasteryRecord, error) {
	if m.GetBySpeechIDFunc == nil {
		panic("masteryRepoMock.GetBySpeechIDFunc is nil")
	}
	return m.GetBySpeechIDFunc(ctx, userID, speechID)
}

func (m *masteryRepoMock) Upsert(ctx context.Context, userID, speechID uuid.UUID, records []*domain.MasteryRecord) error {
	if m.UpsertFunc == nil {
		panic("masteryRepoMock.UpsertFunc is nil")
	}
	return m.UpsertFunc(ctx, userID, speechID, records)
}

func (m *masteryRepoMock) List(ctx context.Context, userID uuid.UUID, filter domain.MasteryFilter) ([]*domain.MasteryRecord, int, error) {
	if m.ListFunc == nil {
		panic("masteryRepoMock.ListFunc is nil")
	}
	return m.ListFunc(ctx, userID, filter)
}

var _ sessionRepo = &sessionRepoMock{}

type sessionRepoMock struct {
	CreateFunc          func(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error)
	GetByIDFunc         func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.PracticeSession, error)
	GetActiveFunc       func(ctx context.Context, userID uuid.UUID) (*domain.PracticeSession, error)
	GetLastFinishedFunc func(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeSession, error)
	FinishFunc          func(ctx context.Context, userID, sessionID uuid.UUID, result domain.SessionResult) (*domain.PracticeSession, error)
	AbandonFunc         func(ctx context.Context, userID, sessionID uuid.UUID) error
	ListBySpeechFunc    func(ctx context.Context, userID, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeSession, int, error)
	CountTodayFunc      func(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error)
	GetStreakDaysFunc   func(ctx context.Context, userID uuid.UUID, dayStart time.Time, lastNDays int) ([]domain.DayPracticeCount, error)
}

func (m *sessionRepoMock) Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
	if m.CreateFunc == nil {
		panic("sessionRepoMock.CreateFunc is nil")
	}
	return m.CreateFunc(ctx, session)
}

func (m *sessionRepoMock) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.PracticeSession, error) {
	if m.GetByIDFunc == nil {
		panic("sessionRepoMock.GetByIDFunc is nil")
	}
	return m.GetByIDFunc(ctx, userID, sessionID)
}

func (m *sessionRepoMock) GetActive(ctx context.Context, userID uuid.UUID) (*domain.PracticeSession, error) {
	if m.GetActiveFunc == nil {
		panic("sessionRepoMock.GetActiveFunc is nil")
	}
	return m.GetActiveFunc(ctx, userID)
}

func (m *sessionRepoMock) GetLastFinished(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeSession, error) {
	if m.GetLastFinishedFunc == nil {
		panic("sessionRepoMock.GetLastFinishedFunc is nil")
	}
	return m.GetLastFinishedFunc(ctx, userID, speechID)
}

func (m *sessionRepoMock) Finish(ctx context.Context, userID, sessionID uuid.UUID, result domain.SessionResult) (*domain.PracticeSession, error) {
	if m.FinishFunc == nil {
		panic("sessionRepoMock.FinishFunc is nil")
	}
	return m.FinishFunc(ctx, userID, sessionID, result)
}

func (m *sessionRepoMock) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	if m.AbandonFunc == nil {
		panic("sessionRepoMock.AbandonFunc is nil")
	}
	return m.AbandonFunc(ctx, userID, sessionID)
}

func (m *sessionRepoMock) ListBySpeech(ctx context.Context, userID, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeSession, int, error) {
	if m.ListBySpeechFunc == nil {
		panic("sessionRepoMock.ListBySpeechFunc is nil")
	}
	return m.ListBySpeechFunc(ctx, userID, speechID, limit, offset)
}

func (m *sessionRepoMock) CountToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error) {
	if m.CountTodayFunc == nil {
		panic("sessionRepoMock.CountTodayFunc is nil")
	}
	return m.CountTodayFunc(ctx, userID, dayStart)
}

func (m *sessionRepoMock) GetStreakDays(ctx context.Context, userID uuid.UUID, dayStart time.Time, lastNDays int) ([]domain.DayPracticeCount, error) {
	if m.GetStreakDaysFunc == nil {
		panic("sessionRepoMock.GetStreakDaysFunc is nil")
	}
	return m.GetStreakDaysFunc(ctx, userID, dayStart, lastNDays)
}

var _ practiceLogRepo = &practiceLogRepoMock{}

type practiceLogRepoMock struct {
	CreateFunc      func(ctx context.Context, log *domain.PracticeLog) (*domain.PracticeLog, error)
	GetByCardIDFunc func(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error)
}

func (m *practiceLogRepoMock) Create(ctx context.Context, log *domain.PracticeLog) (*domain.PracticeLog, error) {
	if m.CreateFunc == nil {
		panic("practiceLogRepoMock.CreateFunc is nil")
	}
	return m.CreateFunc(ctx, log)
}

func (m *practiceLogRepoMock) GetByCardID(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error) {
	if m.GetByCardIDFunc == nil {
		panic("practiceLogRepoMock.GetByCardIDFunc is nil")
	}
	return m.GetByCardIDFunc(ctx, cardID, limit, offset)
}

// txManagerMock runs the callback inline, no transaction semantics.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedClock returns a constant time.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
