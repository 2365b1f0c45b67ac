package textmatch

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// MatcherConfig tunes the live matcher.
type MatcherConfig struct {
	// Threshold is the minimum Similarity score to accept a spoken token as
	// the expected word. Default 0.5.
	Threshold float64
	// Lookahead is how many words past the cursor are scanned when the
	// current word does not match (the speaker skipped ahead). Default 3.
	Lookahead int
}

// DefaultMatcherConfig returns the thresholds used by live practice.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{Threshold: 0.5, Lookahead: 3}
}

// Matcher aligns a stream of spoken tokens against the expected word
// sequence of a speech. It is an incremental state machine: each Advance
// call consumes one spoken token, returns whatever verdicts it can decide,
// and never blocks. Tokens arriving after the last expected word is matched
// are ignored.
//
// Matcher is session-scoped mutable state and not safe for concurrent use;
// one practice session owns one Matcher.
type Matcher struct {
	expected  []domain.WordToken
	threshold float64
	lookahead int

	cursor        int
	wrongAttempts []string
	lastAdvanceAt time.Time
	verdicts      []domain.WordVerdict
	counts        domain.VerdictCounts
	finalized     bool
}

// NewMatcher creates a matcher over the expected tokens. startedAt anchors
// the timer for the first word.
func NewMatcher(expected []domain.WordToken, cfg MatcherConfig, startedAt time.Time) *Matcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.5
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 3
	}
	return &Matcher{
		expected:      expected,
		threshold:     cfg.Threshold,
		lookahead:     cfg.Lookahead,
		lastAdvanceAt: startedAt,
		verdicts:      make([]domain.WordVerdict, 0, len(expected)),
	}
}

// Advance consumes one spoken token observed at the given time.
// hesitationThreshold is the adaptive limit for the word currently under the
// cursor; hintShown reports whether a hint was displayed for it. Returns the
// verdicts decided by this token (nil when the token was a wrong attempt or
// the session is already fully matched).
func (m *Matcher) Advance(spoken string, at time.Time, hesitationThreshold time.Duration, hintShown bool) []domain.WordVerdict {
	if m.finalized || m.cursor >= len(m.expected) {
		return nil
	}

	elapsed := at.Sub(m.lastAdvanceAt)

	// Direct match against the word under the cursor.
	if Similarity(spoken, m.expected[m.cursor].Normalized) >= m.threshold {
		v := m.matchVerdict(m.cursor, elapsed, hesitationThreshold, hintShown)
		m.record(v)
		m.advanceTo(m.cursor+1, at)
		return []domain.WordVerdict{v}
	}

	// The speaker may have skipped ahead. Scan a small window past the
	// cursor; on a hit, everything in between is skipped.
	for offset := 1; offset <= m.lookahead && m.cursor+offset < len(m.expected); offset++ {
		target := m.cursor + offset
		if Similarity(spoken, m.expected[target].Normalized) < m.threshold {
			continue
		}

		emitted := make([]domain.WordVerdict, 0, offset+1)
		for pos := m.cursor; pos < target; pos++ {
			skip := domain.WordVerdict{
				Position: pos,
				Word:     m.expected[pos].Raw,
				Verdict:  domain.VerdictSkipped,
			}
			m.record(skip)
			emitted = append(emitted, skip)
		}

		v := m.matchVerdict(target, elapsed, hesitationThreshold, hintShown)
		m.record(v)
		emitted = append(emitted, v)
		m.advanceTo(target+1, at)
		return emitted
	}

	// Wrong attempt: remember it, keep the cursor and the timer running.
	m.wrongAttempts = append(m.wrongAttempts, spoken)
	return nil
}

// Finalize marks every unreached word as missed and closes the matcher.
// Calling Finalize twice returns nil the second time.
func (m *Matcher) Finalize() []domain.WordVerdict {
	if m.finalized {
		return nil
	}
	m.finalized = true

	emitted := make([]domain.WordVerdict, 0, len(m.expected)-m.cursor)
	for pos := m.cursor; pos < len(m.expected); pos++ {
		v := domain.WordVerdict{
			Position: pos,
			Word:     m.expected[pos].Raw,
			Verdict:  domain.VerdictMissed,
		}
		m.record(v)
		emitted = append(emitted, v)
	}
	m.cursor = len(m.expected)
	return emitted
}

// Accuracy returns the session accuracy so far: full credit for correct,
// half for hesitated, none for skipped or missed, over all expected words.
func (m *Matcher) Accuracy() float64 {
	if len(m.expected) == 0 {
		return 0
	}
	score := float64(m.counts.Correct) + 0.5*float64(m.counts.Hesitated)
	return score / float64(len(m.expected)) * 100
}

// Cursor returns the index of the next expected word.
func (m *Matcher) Cursor() int { return m.cursor }

// Done reports whether every expected word has a verdict.
func (m *Matcher) Done() bool { return m.cursor >= len(m.expected) }

// Verdicts returns all verdicts recorded so far, in position order.
func (m *Matcher) Verdicts() []domain.WordVerdict { return m.verdicts }

// Counts returns the per-verdict counters so far.
func (m *Matcher) Counts() domain.VerdictCounts { return m.counts }

// WrongAttempts returns the unmatched tokens heard since the last
// successful match. Cleared on every advance.
func (m *Matcher) WrongAttempts() []string { return m.wrongAttempts }

func (m *Matcher) matchVerdict(pos int, elapsed, threshold time.Duration, hintShown bool) domain.WordVerdict {
	verdict := domain.VerdictCorrect
	if hintShown || (threshold > 0 && elapsed > threshold) {
		verdict = domain.VerdictHesitated
	}
	return domain.WordVerdict{
		Position:  pos,
		Word:      m.expected[pos].Raw,
		Verdict:   verdict,
		ElapsedMs: elapsed.Milliseconds(),
		HintShown: hintShown,
	}
}

func (m *Matcher) record(v domain.WordVerdict) {
	m.verdicts = append(m.verdicts, v)
	switch v.Verdict {
	case domain.VerdictCorrect:
		m.counts.Correct++
	case domain.VerdictHesitated:
		m.counts.Hesitated++
	case domain.VerdictSkipped:
		m.counts.Skipped++
	case domain.VerdictMissed:
		m.counts.Missed++
	}
}

func (m *Matcher) advanceTo(cursor int, at time.Time) {
	m.cursor = cursor
	m.wrongAttempts = m.wrongAttempts[:0]
	m.lastAdvanceAt = at
}
