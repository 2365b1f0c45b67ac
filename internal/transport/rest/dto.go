package rest

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

type speechResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	DeadlineAt time.Time `json:"deadlineAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toSpeechResponse(s *domain.Speech) speechResponse {
	return speechResponse{
		ID:         s.ID.String(),
		Title:      s.Title,
		Text:       s.Text,
		DeadlineAt: s.DeadlineAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type tokenResponse struct {
	Raw           string `json:"raw"`
	Normalized    string `json:"normalized"`
	Position      int    `json:"position"`
	SentenceStart bool   `json:"sentenceStart"`
}

func toTokenResponses(tokens []domain.WordToken) []tokenResponse {
	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenResponse{
			Raw:           t.Raw,
			Normalized:    t.Normalized,
			Position:      t.Position,
			SentenceStart: t.SentenceStart,
		})
	}
	return out
}

type verdictResponse struct {
	Position  int    `json:"position"`
	Word      string `json:"word"`
	Verdict   string `json:"verdict"`
	ElapsedMs int64  `json:"elapsedMs"`
	HintShown bool   `json:"hintShown"`
}

func toVerdictResponses(verdicts []domain.WordVerdict) []verdictResponse {
	out := make([]verdictResponse, 0, len(verdicts))
	for _, v := range verdicts {
		out = append(out, verdictResponse{
			Position:  v.Position,
			Word:      v.Word,
			Verdict:   v.Verdict.String(),
			ElapsedMs: v.ElapsedMs,
			HintShown: v.HintShown,
		})
	}
	return out
}

type verdictCountsResponse struct {
	Correct   int `json:"correct"`
	Hesitated int `json:"hesitated"`
	Skipped   int `json:"skipped"`
	Missed    int `json:"missed"`
}

type sessionResultResponse struct {
	Verdicts          []verdictResponse     `json:"verdicts"`
	Counts            verdictCountsResponse `json:"counts"`
	RawAccuracy       float64               `json:"rawAccuracy"`
	WeightedAccuracy  float64               `json:"weightedAccuracy"`
	VisibilityPercent float64               `json:"visibilityPercent"`
	DurationMs        int64                 `json:"durationMs"`
	CompletedAt       time.Time             `json:"completedAt"`
}

type sessionResponse struct {
	ID                string                 `json:"id"`
	SpeechID          string                 `json:"speechId"`
	Status            string                 `json:"status"`
	StartedAt         time.Time              `json:"startedAt"`
	FinishedAt        *time.Time             `json:"finishedAt,omitempty"`
	VisibilityPercent float64                `json:"visibilityPercent"`
	Result            *sessionResultResponse `json:"result,omitempty"`
}

func toSessionResponse(s *domain.PracticeSession) sessionResponse {
	resp := sessionResponse{
		ID:                s.ID.String(),
		SpeechID:          s.SpeechID.String(),
		Status:            s.Status.String(),
		StartedAt:         s.StartedAt,
		FinishedAt:        s.FinishedAt,
		VisibilityPercent: s.VisibilityPercent,
	}
	if s.Result != nil {
		resp.Result = &sessionResultResponse{
			Verdicts: toVerdictResponses(s.Result.Verdicts),
			Counts: verdictCountsResponse{
				Correct:   s.Result.Counts.Correct,
				Hesitated: s.Result.Counts.Hesitated,
				Skipped:   s.Result.Counts.Skipped,
				Missed:    s.Result.Counts.Missed,
			},
			RawAccuracy:       s.Result.RawAccuracy,
			WeightedAccuracy:  s.Result.WeightedAccuracy,
			VisibilityPercent: s.Result.VisibilityPercent,
			DurationMs:        s.Result.DurationMs,
			CompletedAt:       s.Result.CompletedAt,
		}
	}
	return resp
}

func toSessionResponses(sessions []*domain.PracticeSession) []sessionResponse {
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

type cardResponse struct {
	ID                   string    `json:"id"`
	SpeechID             string    `json:"speechId"`
	State                string    `json:"state"`
	IntervalMinutes      int       `json:"intervalMinutes"`
	EaseFactor           float64   `json:"easeFactor"`
	LearningStep         int       `json:"learningStep"`
	ConsecutiveStruggles int       `json:"consecutiveStruggles"`
	LastAccuracy         float64   `json:"lastAccuracy"`
	PerformanceTrend     float64   `json:"performanceTrend"`
	NextReviewAt         time.Time `json:"nextReviewAt"`
	ReviewCount          int       `json:"reviewCount"`
}

func toCardResponse(c *domain.PracticeCard) cardResponse {
	return cardResponse{
		ID:                   c.ID.String(),
		SpeechID:             c.SpeechID.String(),
		State:                c.State.String(),
		IntervalMinutes:      c.IntervalMinutes,
		EaseFactor:           c.EaseFactor,
		LearningStep:         c.LearningStep,
		ConsecutiveStruggles: c.ConsecutiveStruggles,
		LastAccuracy:         c.LastAccuracy,
		PerformanceTrend:     c.PerformanceTrend,
		NextReviewAt:         c.NextReviewAt,
		ReviewCount:          c.ReviewCount,
	}
}

type masteryResponse struct {
	SpeechID       string    `json:"speechId"`
	Word           string    `json:"word"`
	CorrectCount   int       `json:"correctCount"`
	MissedCount    int       `json:"missedCount"`
	HesitatedCount int       `json:"hesitatedCount"`
	IsSimple       bool      `json:"isSimple"`
	LastSeenAt     time.Time `json:"lastSeenAt"`
}

func toMasteryResponses(records []*domain.MasteryRecord) []masteryResponse {
	out := make([]masteryResponse, 0, len(records))
	for _, m := range records {
		out = append(out, masteryResponse{
			SpeechID:       m.SpeechID.String(),
			Word:           m.Word,
			CorrectCount:   m.CorrectCount,
			MissedCount:    m.MissedCount,
			HesitatedCount: m.HesitatedCount,
			IsSimple:       m.IsSimple,
			LastSeenAt:     m.LastSeenAt,
		})
	}
	return out
}

type cardSnapshotResponse struct {
	State                string    `json:"state"`
	IntervalMinutes      int       `json:"intervalMinutes"`
	EaseFactor           float64   `json:"easeFactor"`
	LearningStep         int       `json:"learningStep"`
	ConsecutiveStruggles int       `json:"consecutiveStruggles"`
	LastAccuracy         float64   `json:"lastAccuracy"`
	PerformanceTrend     float64   `json:"performanceTrend"`
	NextReviewAt         time.Time `json:"nextReviewAt"`
	ReviewCount          int       `json:"reviewCount"`
}

type practiceLogResponse struct {
	ID          string                `json:"id"`
	CardID      string                `json:"cardId"`
	SessionID   string                `json:"sessionId"`
	Rating      string                `json:"rating"`
	RatingKnown bool                  `json:"ratingKnown"`
	PrevState   *cardSnapshotResponse `json:"prevState,omitempty"`
	DurationMs  *int64                `json:"durationMs,omitempty"`
	PracticedAt time.Time             `json:"practicedAt"`
}

func toPracticeLogResponses(logs []*domain.PracticeLog) []practiceLogResponse {
	out := make([]practiceLogResponse, 0, len(logs))
	for _, l := range logs {
		resp := practiceLogResponse{
			ID:          l.ID.String(),
			CardID:      l.CardID.String(),
			SessionID:   l.SessionID.String(),
			Rating:      l.Rating.String(),
			RatingKnown: l.RatingKnown,
			DurationMs:  l.DurationMs,
			PracticedAt: l.PracticedAt,
		}
		if l.PrevState != nil {
			resp.PrevState = &cardSnapshotResponse{
				State:                l.PrevState.State.String(),
				IntervalMinutes:      l.PrevState.IntervalMinutes,
				EaseFactor:           l.PrevState.EaseFactor,
				LearningStep:         l.PrevState.LearningStep,
				ConsecutiveStruggles: l.PrevState.ConsecutiveStruggles,
				LastAccuracy:         l.PrevState.LastAccuracy,
				PerformanceTrend:     l.PrevState.PerformanceTrend,
				NextReviewAt:         l.PrevState.NextReviewAt,
				ReviewCount:          l.PrevState.ReviewCount,
			}
		}
		out = append(out, resp)
	}
	return out
}
