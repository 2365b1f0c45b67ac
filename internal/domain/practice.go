package domain

import (
	"time"

	"github.com/google/uuid"
)

// PracticeCard holds the deadline-capped SM-2 scheduler state for one speech.
// Exactly one card exists per speech; it is created on the first session.
type PracticeCard struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	SpeechID uuid.UUID
	State    CardState
	// IntervalMinutes is the current review interval. Minutes, not days:
	// deadline pressure routinely pushes intervals below an hour.
	IntervalMinutes int
	EaseFactor      float64
	LearningStep    int
	// ConsecutiveStruggles counts sessions in a row with weighted accuracy
	// below 50. Reset on every non-struggling session.
	ConsecutiveStruggles int
	LastAccuracy         float64
	// PerformanceTrend is a smoothed accuracy-delta scalar in [-1, +1].
	PerformanceTrend float64
	NextReviewAt     time.Time
	ReviewCount      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsDue returns true if the card needs practice at the given time.
// NEW cards are always due.
func (c *PracticeCard) IsDue(now time.Time) bool {
	if c.State == CardStateNew {
		return true
	}
	return !c.NextReviewAt.After(now)
}

// CardSnapshot captures scheduler state before a session (for undo/logs).
type CardSnapshot struct {
	State                CardState
	IntervalMinutes      int
	EaseFactor           float64
	LearningStep         int
	ConsecutiveStruggles int
	LastAccuracy         float64
	PerformanceTrend     float64
	NextReviewAt         time.Time
	ReviewCount          int
}

// SRSUpdateParams holds the card fields to persist after scheduling.
type SRSUpdateParams struct {
	State                CardState
	IntervalMinutes      int
	EaseFactor           float64
	LearningStep         int
	ConsecutiveStruggles int
	LastAccuracy         float64
	PerformanceTrend     float64
	NextReviewAt         time.Time
	ReviewCount          int
}

// MasteryRecord tracks historical performance for one distinct normalized
// word within one speech. Created lazily on first encounter, never deleted
// while the speech exists.
type MasteryRecord struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	SpeechID       uuid.UUID
	Word           string // normalized form
	CorrectCount   int
	MissedCount    int
	HesitatedCount int
	// IsSimple marks closed-class function words (articles, conjunctions,
	// common prepositions, auxiliaries, pronouns) which hide sooner.
	IsSimple   bool
	LastSeenAt time.Time
}

// NetRecoveries is correct count minus all failure counts. A word with any
// failure history must reach +2 before it may be hidden again.
func (m *MasteryRecord) NetRecoveries() int {
	return m.CorrectCount - (m.MissedCount + m.HesitatedCount)
}

// HasStruggled reports whether the word was ever missed or hesitated on.
func (m *MasteryRecord) HasStruggled() bool {
	return m.MissedCount > 0 || m.HesitatedCount > 0
}

// MasteryFilter narrows a mastery listing. Nil fields are not applied.
type MasteryFilter struct {
	SpeechID *uuid.UUID
	// Struggling selects words with at least one miss or hesitation.
	Struggling *bool
	Simple     *bool
	MinCorrect *int
	Limit      int
	Offset     int
}

// WordVerdict is the matcher's decision for one expected word in one session.
type WordVerdict struct {
	Position  int
	Word      string // raw form, for feedback lists
	Verdict   VerdictType
	ElapsedMs int64 // time since the previous successful match; 0 for skipped/missed
	HintShown bool
}

// VerdictCounts holds per-verdict counters for a session.
type VerdictCounts struct {
	Correct   int
	Hesitated int
	Skipped   int
	Missed    int
}

// Total returns the number of scored words.
func (v VerdictCounts) Total() int {
	return v.Correct + v.Hesitated + v.Skipped + v.Missed
}

// SessionResult is the immutable record of one completed practice attempt.
type SessionResult struct {
	Verdicts []WordVerdict
	Counts   VerdictCounts
	// RawAccuracy is (correct + 0.5*hesitated) / total * 100.
	RawAccuracy float64
	// WeightedAccuracy is RawAccuracy discounted by how much of the text was
	// visible, so reading well is not rewarded as recalling well.
	WeightedAccuracy  float64
	VisibilityPercent float64
	DurationMs        int64
	CompletedAt       time.Time
}

// PracticeSession tracks one practice attempt from start to finish.
type PracticeSession struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	SpeechID   uuid.UUID
	Status     SessionStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     *SessionResult
	// VisibilityPercent the session was started with.
	VisibilityPercent float64
	CreatedAt         time.Time
}

// PracticeLog records a single completed session's scheduling outcome.
type PracticeLog struct {
	ID          uuid.UUID
	CardID      uuid.UUID
	UserID      uuid.UUID
	SessionID   uuid.UUID
	Rating      PracticeRating
	RatingKnown bool // false when the rating was derived from accuracy
	PrevState   *CardSnapshot
	DurationMs  *int64
	PracticedAt time.Time
}

// CardStatusCounts holds the count of cards per state.
type CardStatusCounts struct {
	New        int
	Learning   int
	Review     int
	Relearning int
	Total      int
}

// Dashboard holds aggregated practice statistics for the user.
type Dashboard struct {
	DueCount       int
	PracticedToday int
	Streak         int
	StatusCounts   CardStatusCounts
	ActiveSession  *PracticeSession
}

// DayPracticeCount holds the session count for a specific date.
type DayPracticeCount struct {
	Date  time.Time
	Count int
}
