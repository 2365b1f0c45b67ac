package practice

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"

	"github.com/oratoria/oratoria-backend/internal/service/practice/tempo"
	"github.com/oratoria/oratoria-backend/internal/service/practice/textmatch"
)

// liveSession is the in-memory state of one active practice session: the
// matcher cursor, the tempo windows and the visibility plan. It exists only
// while the process is up; a finished or abandoned session releases it.
type liveSession struct {
	mu sync.Mutex

	sessionID uuid.UUID
	userID    uuid.UUID
	speechID  uuid.UUID

	tokens            []domain.WordToken
	hidden            map[int]struct{}
	visibilityPercent float64

	matcher   *textmatch.Matcher
	estimator *tempo.Estimator
	startedAt time.Time
}

func newLiveSession(
	session *domain.PracticeSession,
	tokens []domain.WordToken,
	hiddenPositions []int,
	visibilityPercent float64,
	cfg textmatch.MatcherConfig,
) *liveSession {
	hidden := make(map[int]struct{}, len(hiddenPositions))
	for _, p := range hiddenPositions {
		hidden[p] = struct{}{}
	}
	return &liveSession{
		sessionID:         session.ID,
		userID:            session.UserID,
		speechID:          session.SpeechID,
		tokens:            tokens,
		hidden:            hidden,
		visibilityPercent: visibilityPercent,
		matcher:           textmatch.NewMatcher(tokens, cfg, session.StartedAt),
		estimator:         tempo.NewEstimator(),
		startedAt:         session.StartedAt,
	}
}

// feed runs one spoken token through the matcher and feeds accepted match
// latencies back into the tempo estimator.
func (ls *liveSession) feed(spoken string, at time.Time, hintShown bool) []domain.WordVerdict {
	if ls.matcher.Done() {
		return nil
	}

	cursor := ls.matcher.Cursor()
	current := ls.tokens[cursor]
	firstWord := ls.estimator.WordsProcessed() == 0 && cursor == 0

	threshold := ls.estimator.Threshold(current, firstWord)
	verdicts := ls.matcher.Advance(spoken, at, threshold, hintShown)

	for _, v := range verdicts {
		switch v.Verdict {
		case domain.VerdictCorrect, domain.VerdictHesitated:
			ls.estimator.Observe(time.Duration(v.ElapsedMs)*time.Millisecond, ls.tokens[v.Position])
		}
	}
	return verdicts
}

// nextHint returns the hint timing for the word currently under the cursor.
func (ls *liveSession) nextHint() (initial, step time.Duration, ok bool) {
	if ls.matcher.Done() {
		return 0, 0, false
	}
	cursor := ls.matcher.Cursor()
	firstWord := ls.estimator.WordsProcessed() == 0 && cursor == 0
	initial, step = ls.estimator.HintDelays(ls.tokens[cursor], firstWord)
	return initial, step, true
}

// liveRegistry holds the live sessions of this process, keyed by session ID.
type liveRegistry struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*liveSession
}

func newLiveRegistry() *liveRegistry {
	return &liveRegistry{byID: make(map[uuid.UUID]*liveSession)}
}

func (r *liveRegistry) get(sessionID uuid.UUID) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.byID[sessionID]
	return ls, ok
}

func (r *liveRegistry) put(ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[ls.sessionID] = ls
}

func (r *liveRegistry) remove(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, sessionID)
}
