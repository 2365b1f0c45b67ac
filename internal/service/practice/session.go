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

	"github.com/oratoria/oratoria-backend/internal/service/practice/textmatch"
)

// StartSessionOutput is everything the client needs to render a session:
// the word sequence, which positions to blank out, and the progress gauge.
type StartSessionOutput struct {
	Session           *domain.PracticeSession
	Tokens            []domain.WordToken
	HiddenPositions   []int
	VisibilityPercent float64
	TargetVisibility  float64
}

// FeedOutput is the realtime response to a batch of recognized tokens.
type FeedOutput struct {
	Verdicts []domain.WordVerdict
	Cursor   int
	Done     bool
	// HintInitialMs and HintStepMs are the hint timings for the word now
	// under the cursor; zero when the session is fully matched.
	HintInitialMs int64
	HintStepMs    int64
}

// StartSession starts a practice session for a speech, or returns the
// existing active one (idempotent). An active session on a different speech
// is abandoned first: the user moved on.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*StartSessionOutput, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	speech, err := s.speeches.GetByID(ctx, userID, input.SpeechID)
	if err != nil {
		return nil, fmt.Errorf("get speech: %w", err)
	}

	existing, err := s.sessions.GetActive(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}
	if err == nil {
		if existing.SpeechID == input.SpeechID {
			return s.resumeSession(ctx, userID, speech, existing)
		}
		if abandonErr := s.sessions.Abandon(ctx, userID, existing.ID); abandonErr != nil {
			return nil, fmt.Errorf("abandon previous session: %w", abandonErr)
		}
		s.live.remove(existing.ID)
		s.log.InfoContext(ctx, "previous session abandoned",
			slog.String("user_id", userID.String()),
			slog.String("session_id", existing.ID.String()),
		)
	}

	if _, err := s.ensureCard(ctx, userID, input.SpeechID); err != nil {
		return nil, err
	}

	tokens, hidden, percent, err := s.buildVisibilityPlan(ctx, userID, speech)
	if err != nil {
		return nil, err
	}

	session := &domain.PracticeSession{
		ID:                uuid.New(),
		UserID:            userID,
		SpeechID:          input.SpeechID,
		Status:            domain.SessionStatusActive,
		StartedAt:         s.clock.Now(),
		VisibilityPercent: percent,
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Race: another request created a session between check and
			// create. Return that one.
			existing, getErr := s.sessions.GetActive(ctx, userID)
			if getErr != nil {
				return nil, fmt.Errorf("get active after race: %w", getErr)
			}
			return s.resumeSession(ctx, userID, speech, existing)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.live.put(newLiveSession(created, tokens, hidden, percent, s.matcherConfig()))

	s.log.InfoContext(ctx, "session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", created.ID.String()),
		slog.String("speech_id", input.SpeechID.String()),
		slog.Float64("visibility_percent", percent),
	)

	return s.sessionOutput(ctx, userID, speech, created, tokens, hidden, percent)
}

// FeedTokens runs a batch of recognized tokens through the active session's
// matcher and returns the verdicts decided so far.
func (s *Service) FeedTokens(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ls, found := s.live.get(input.SessionID)
	if !found {
		// The session row may still be active while the in-memory state is
		// gone (restart). The client must finish with a full transcript.
		session, err := s.sessions.GetByID(ctx, userID, input.SessionID)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session.Status == domain.SessionStatusActive {
			return nil, fmt.Errorf("live state unavailable for session %s: %w", input.SessionID, domain.ErrConflict)
		}
		return nil, domain.ErrNotFound
	}
	if ls.userID != userID {
		return nil, domain.ErrForbidden
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	var verdicts []domain.WordVerdict
	for _, w := range input.Words {
		at := ls.startedAt.Add(time.Duration(w.OffsetMs) * time.Millisecond)
		verdicts = append(verdicts, ls.feed(w.Text, at, w.HintShown)...)
	}

	out := &FeedOutput{
		Verdicts: verdicts,
		Cursor:   ls.matcher.Cursor(),
		Done:     ls.matcher.Done(),
	}
	if initial, step, hasNext := ls.nextHint(); hasNext {
		out.HintInitialMs = initial.Milliseconds()
		out.HintStepMs = step.Milliseconds()
	}
	return out, nil
}

// FinishSession closes a session: unreached words become misses, mastery
// and the card are updated, and the outcome is logged. All writes happen in
// one transaction.
func (s *Service) FinishSession(ctx context.Context, input FinishSessionInput) (*domain.PracticeSession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, userID, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != domain.SessionStatusActive {
		return nil, domain.NewValidationError("session", "session already finished")
	}

	speech, err := s.speeches.GetByID(ctx, userID, session.SpeechID)
	if err != nil {
		return nil, fmt.Errorf("get speech: %w", err)
	}

	now := s.clock.Now()

	verdicts, counts, rawAccuracy, visibility, err := s.collectSessionOutcome(session, speech, input)
	if err != nil {
		return nil, err
	}

	durationMs := now.Sub(session.StartedAt).Milliseconds()
	if input.DurationMs != nil {
		durationMs = *input.DurationMs
	}

	result := domain.SessionResult{
		Verdicts:          verdicts,
		Counts:            counts,
		RawAccuracy:       rawAccuracy,
		WeightedAccuracy:  WeightedAccuracy(rawAccuracy, visibility),
		VisibilityPercent: visibility,
		DurationMs:        durationMs,
		CompletedAt:       now,
	}

	card, err := s.ensureCard(ctx, userID, session.SpeechID)
	if err != nil {
		return nil, err
	}

	update, rating, ratingKnown, err := s.scheduleCard(card, speech, result, input.Rating, now)
	if err != nil {
		return nil, err
	}

	var finished *domain.PracticeSession
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := s.applyMastery(txCtx, userID, session.SpeechID, verdicts, now); txErr != nil {
			return txErr
		}

		if _, txErr := s.cards.UpdateSRS(txCtx, userID, card.ID, update); txErr != nil {
			return fmt.Errorf("update card: %w", txErr)
		}

		snapshot := snapshotCard(card)
		if _, txErr := s.logs.Create(txCtx, &domain.PracticeLog{
			ID:          uuid.New(),
			CardID:      card.ID,
			UserID:      userID,
			SessionID:   session.ID,
			Rating:      rating,
			RatingKnown: ratingKnown,
			PrevState:   &snapshot,
			DurationMs:  &durationMs,
			PracticedAt: now,
		}); txErr != nil {
			return fmt.Errorf("create practice log: %w", txErr)
		}

		var txErr error
		finished, txErr = s.sessions.Finish(txCtx, userID, session.ID, result)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}

	s.live.remove(session.ID)

	s.log.InfoContext(ctx, "session finished",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Float64("raw_accuracy", result.RawAccuracy),
		slog.Float64("weighted_accuracy", result.WeightedAccuracy),
		slog.String("rating", rating.String()),
		slog.Bool("rating_known", ratingKnown),
		slog.Int("next_interval_minutes", update.IntervalMinutes),
	)

	return finished, nil
}

// AbandonSession abandons the current active session. Abandoned sessions
// leave no trace: no mastery update, no scheduling, no log. Idempotent noop
// when no session is active.
func (s *Service) AbandonSession(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get active session: %w", err)
	}

	if err := s.sessions.Abandon(ctx, userID, session.ID); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	s.live.remove(session.ID)

	s.log.InfoContext(ctx, "session abandoned",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
	)

	return nil
}

// GetActiveSession returns the user's active session, or nil if none.
func (s *Service) GetActiveSession(ctx context.Context) (*domain.PracticeSession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// resumeSession returns an existing active session, recreating the live
// state if this process never saw it. A recreated matcher starts from word
// zero; the client re-feeds from the top.
func (s *Service) resumeSession(ctx context.Context, userID uuid.UUID, speech *domain.Speech, session *domain.PracticeSession) (*StartSessionOutput, error) {
	if ls, found := s.live.get(session.ID); found {
		hidden := make([]int, 0, len(ls.hidden))
		for _, tok := range ls.tokens {
			if _, hiddenTok := ls.hidden[tok.Position]; hiddenTok {
				hidden = append(hidden, tok.Position)
			}
		}
		return s.sessionOutput(ctx, userID, speech, session, ls.tokens, hidden, ls.visibilityPercent)
	}

	tokens, hidden, percent, err := s.buildVisibilityPlan(ctx, userID, speech)
	if err != nil {
		return nil, err
	}
	s.live.put(newLiveSession(session, tokens, hidden, percent, s.matcherConfig()))

	s.log.InfoContext(ctx, "returning existing session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
	)

	return s.sessionOutput(ctx, userID, speech, session, tokens, hidden, percent)
}

// buildVisibilityPlan tokenizes the speech and decides which words to hide
// this session, based on mastery history and the previous session's verdicts.
func (s *Service) buildVisibilityPlan(ctx context.Context, userID uuid.UUID, speech *domain.Speech) ([]domain.WordToken, []int, float64, error) {
	tokens := textmatch.Tokenize(speech.Text)

	records, err := s.mastery.GetBySpeechID(ctx, userID, speech.ID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("get mastery records: %w", err)
	}

	lastVerdicts := map[string]domain.VerdictType{}
	last, err := s.sessions.GetLastFinished(ctx, userID, speech.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, 0, fmt.Errorf("get last session: %w", err)
	}
	if err == nil && last.Result != nil {
		lastVerdicts = LastVerdicts(last.Result.Verdicts)
	}

	hidden, percent := BuildVisibility(tokens, mapRecordsByWord(records), lastVerdicts, s.practiceConfig)
	return tokens, hidden, percent, nil
}

// collectSessionOutcome produces the final verdict list, either from the
// live matcher or by replaying a transcript when the live state was lost.
func (s *Service) collectSessionOutcome(
	session *domain.PracticeSession,
	speech *domain.Speech,
	input FinishSessionInput,
) ([]domain.WordVerdict, domain.VerdictCounts, float64, float64, error) {
	if ls, found := s.live.get(session.ID); found {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		ls.matcher.Finalize()
		return ls.matcher.Verdicts(), ls.matcher.Counts(), ls.matcher.Accuracy(), ls.visibilityPercent, nil
	}

	if len(input.Transcript) == 0 {
		return nil, domain.VerdictCounts{}, 0, 0,
			domain.NewValidationError("transcript", "required when live session state is unavailable")
	}

	// Replay: the session row survived a restart, the matcher did not.
	tokens := textmatch.Tokenize(speech.Text)
	replay := newLiveSession(session, tokens, nil, session.VisibilityPercent, s.matcherConfig())
	for _, w := range input.Transcript {
		at := session.StartedAt.Add(time.Duration(w.OffsetMs) * time.Millisecond)
		replay.feed(w.Text, at, w.HintShown)
	}
	replay.matcher.Finalize()
	return replay.matcher.Verdicts(), replay.matcher.Counts(), replay.matcher.Accuracy(), session.VisibilityPercent, nil
}

// scheduleCard runs the explicit-rating or accuracy-derived scheduler and
// assembles the card update.
func (s *Service) scheduleCard(
	card *domain.PracticeCard,
	speech *domain.Speech,
	result domain.SessionResult,
	explicit *domain.PracticeRating,
	now time.Time,
) (domain.SRSUpdateParams, domain.PracticeRating, bool, error) {
	days := speech.DaysUntilDeadline(now)

	if explicit != nil {
		out, err := Schedule(ScheduleInput{
			State:             card.State,
			IntervalMinutes:   card.IntervalMinutes,
			EaseFactor:        card.EaseFactor,
			LearningStep:      card.LearningStep,
			Rating:            *explicit,
			DaysUntilDeadline: days,
			Now:               now,
			Config:            s.srsConfig,
		})
		if err != nil {
			return domain.SRSUpdateParams{}, "", false, err
		}
		return domain.SRSUpdateParams{
			State:                out.State,
			IntervalMinutes:      out.IntervalMinutes,
			EaseFactor:           out.EaseFactor,
			LearningStep:         out.LearningStep,
			ConsecutiveStruggles: nextStruggles(card.ConsecutiveStruggles, result.WeightedAccuracy),
			LastAccuracy:         result.WeightedAccuracy,
			PerformanceTrend:     UpdateTrend(card.PerformanceTrend, card.LastAccuracy, result.WeightedAccuracy),
			NextReviewAt:         out.NextReviewAt,
			ReviewCount:          card.ReviewCount + 1,
		}, *explicit, true, nil
	}

	out, err := ScheduleAdaptive(AdaptiveInput{
		Card:              snapshotCard(card),
		RawAccuracy:       result.RawAccuracy,
		WeightedAccuracy:  result.WeightedAccuracy,
		VisibilityPercent: result.VisibilityPercent,
		DaysUntilDeadline: days,
		WordCount:         result.Counts.Total(),
		Now:               now,
		Config:            s.srsConfig,
	})
	if err != nil {
		return domain.SRSUpdateParams{}, "", false, err
	}
	return domain.SRSUpdateParams{
		State:                out.State,
		IntervalMinutes:      out.IntervalMinutes,
		EaseFactor:           out.EaseFactor,
		LearningStep:         out.LearningStep,
		ConsecutiveStruggles: out.ConsecutiveStruggles,
		LastAccuracy:         result.WeightedAccuracy,
		PerformanceTrend:     out.PerformanceTrend,
		NextReviewAt:         out.NextReviewAt,
		ReviewCount:          card.ReviewCount + 1,
	}, out.DerivedRating, false, nil
}

// applyMastery folds the session verdicts into the speech's mastery records
// and persists every touched record.
func (s *Service) applyMastery(ctx context.Context, userID, speechID uuid.UUID, verdicts []domain.WordVerdict, now time.Time) error {
	existing, err := s.mastery.GetBySpeechID(ctx, userID, speechID)
	if err != nil {
		return fmt.Errorf("get mastery records: %w", err)
	}

	records := mapRecordsByWord(existing)
	ApplyVerdicts(records, verdicts, s.practiceConfig, now)

	touched := make([]*domain.MasteryRecord, 0, len(verdicts))
	for word := range LastVerdicts(verdicts) {
		if rec, found := records[word]; found {
			touched = append(touched, rec)
		}
	}
	if len(touched) == 0 {
		return nil
	}

	if err := s.mastery.Upsert(ctx, userID, speechID, touched); err != nil {
		return fmt.Errorf("upsert mastery records: %w", err)
	}
	return nil
}

// ensureCard loads the speech's card, creating it for speeches that predate
// automatic card creation.
func (s *Service) ensureCard(ctx context.Context, userID, speechID uuid.UUID) (*domain.PracticeCard, error) {
	card, err := s.cards.GetBySpeechID(ctx, userID, speechID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get card: %w", err)
	}

	card, err = s.cards.Create(ctx, userID, speechID, s.srsConfig.DefaultEaseFactor)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

func (s *Service) sessionOutput(
	ctx context.Context,
	userID uuid.UUID,
	speech *domain.Speech,
	session *domain.PracticeSession,
	tokens []domain.WordToken,
	hidden []int,
	percent float64,
) (*StartSessionOutput, error) {
	now := s.clock.Now()

	target := 100.0
	card, err := s.cards.GetBySpeechID(ctx, userID, speech.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if err == nil {
		target = TargetVisibility(speech.DaysUntilDeadline(now), card.LastAccuracy, card.PerformanceTrend, card.ConsecutiveStruggles)
	}

	return &StartSessionOutput{
		Session:           session,
		Tokens:            tokens,
		HiddenPositions:   hidden,
		VisibilityPercent: percent,
		TargetVisibility:  target,
	}, nil
}

func (s *Service) matcherConfig() textmatch.MatcherConfig {
	return textmatch.MatcherConfig{
		Threshold: s.practiceConfig.MatchThreshold,
		Lookahead: s.practiceConfig.Lookahead,
	}
}

func snapshotCard(card *domain.PracticeCard) domain.CardSnapshot {
	return domain.CardSnapshot{
		State:                card.State,
		IntervalMinutes:      card.IntervalMinutes,
		EaseFactor:           card.EaseFactor,
		LearningStep:         card.LearningStep,
		ConsecutiveStruggles: card.ConsecutiveStruggles,
		LastAccuracy:         card.LastAccuracy,
		PerformanceTrend:     card.PerformanceTrend,
		NextReviewAt:         card.NextReviewAt,
		ReviewCount:          card.ReviewCount,
	}
}
