// Package practice implements the memorization business logic: speech
// management, deadline-capped scheduling, per-word mastery, and the live
// practice session pipeline built on textmatch and tempo.
package practice

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type speechRepo interface {
	Create(ctx context.Context, speech *domain.Speech) (*domain.Speech, error)
	GetByID(ctx context.Context, userID, speechID uuid.UUID) (*domain.Speech, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Speech, int, error)
	Update(ctx context.Context, userID, speechID uuid.UUID, params domain.SpeechUpdateParams) (*domain.Speech, error)
	Delete(ctx context.Context, userID, speechID uuid.UUID) error
}

type cardRepo interface {
	GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeCard, error)
	GetByID(ctx context.Context, userID, cardID uuid.UUID) (*domain.PracticeCard, error)
	Create(ctx context.Context, userID, speechID uuid.UUID, ease float64) (*domain.PracticeCard, error)
	UpdateSRS(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) (*domain.PracticeCard, error)
	GetDueCards(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.PracticeCard, error)
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error)
}

type masteryRepo interface {
	GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) ([]*domain.MasteryRecord, error)
	Upsert(ctx context.Context, userID, speechID uuid.UUID, records []*domain.MasteryRecord) error
	List(ctx context.Context, userID uuid.UUID, filter domain.MasteryFilter) ([]*domain.MasteryRecord, int, error)
}

type sessionRepo interface {
	Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error)
	GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.PracticeSession, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.PracticeSession, error)
	GetLastFinished(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeSession, error)
	Finish(ctx context.Context, userID, sessionID uuid.UUID, result domain.SessionResult) (*domain.PracticeSession, error)
	Abandon(ctx context.Context, userID, sessionID uuid.UUID) error
	ListBySpeech(ctx context.Context, userID, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeSession, int, error)
	CountToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error)
	GetStreakDays(ctx context.Context, userID uuid.UUID, dayStart time.Time, lastNDays int) ([]domain.DayPracticeCount, error)
}

type practiceLogRepo interface {
	Create(ctx context.Context, log *domain.PracticeLog) (*domain.PracticeLog, error)
	GetByCardID(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type clock interface {
	Now() time.Time
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the practice business logic.
type Service struct {
	speeches speechRepo
	cards    cardRepo
	mastery  masteryRepo
	sessions sessionRepo
	logs     practiceLogRepo
	tx       txManager
	clock    clock
	log      *slog.Logger

	srsConfig      domain.SRSConfig
	practiceConfig domain.PracticeConfig

	// live holds the in-memory matcher and tempo state of active sessions.
	live *liveRegistry
}

// NewService creates a new practice service.
func NewService(
	log *slog.Logger,
	speeches speechRepo,
	cards cardRepo,
	mastery masteryRepo,
	sessions sessionRepo,
	logs practiceLogRepo,
	tx txManager,
	clock clock,
	srsConfig domain.SRSConfig,
	practiceConfig domain.PracticeConfig,
) *Service {
	return &Service{
		speeches:       speeches,
		cards:          cards,
		mastery:        mastery,
		sessions:       sessions,
		logs:           logs,
		tx:             tx,
		clock:          clock,
		log:            log.With("service", "practice"),
		srsConfig:      srsConfig,
		practiceConfig: practiceConfig,
		live:           newLiveRegistry(),
	}
}
