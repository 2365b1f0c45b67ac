package domain

// CardState represents the spaced-repetition lifecycle state of a practice card.
type CardState string

const (
	CardStateNew        CardState = "NEW"
	CardStateLearning   CardState = "LEARNING"
	CardStateReview     CardState = "REVIEW"
	CardStateRelearning CardState = "RELEARNING"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// PracticeRating represents the outcome grade of a practice session, either
// chosen by the user or derived from weighted accuracy.
type PracticeRating string

const (
	PracticeRatingAgain PracticeRating = "AGAIN"
	PracticeRatingHard  PracticeRating = "HARD"
	PracticeRatingGood  PracticeRating = "GOOD"
	PracticeRatingEasy  PracticeRating = "EASY"
)

func (r PracticeRating) String() string { return string(r) }

func (r PracticeRating) IsValid() bool {
	switch r {
	case PracticeRatingAgain, PracticeRatingHard, PracticeRatingGood, PracticeRatingEasy:
		return true
	}
	return false
}

// VerdictType classifies how a single expected word was handled during a
// live practice pass.
type VerdictType string

const (
	// VerdictCorrect: matched within the adaptive timing threshold, no hint shown.
	VerdictCorrect VerdictType = "CORRECT"
	// VerdictHesitated: matched, but late or only after a hint was shown.
	VerdictHesitated VerdictType = "HESITATED"
	// VerdictSkipped: jumped over by a lookahead match further along the text.
	VerdictSkipped VerdictType = "SKIPPED"
	// VerdictMissed: never reached before the session ended.
	VerdictMissed VerdictType = "MISSED"
)

func (v VerdictType) String() string { return string(v) }

func (v VerdictType) IsValid() bool {
	switch v {
	case VerdictCorrect, VerdictHesitated, VerdictSkipped, VerdictMissed:
		return true
	}
	return false
}

// SessionStatus represents the state of a practice session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusFinished  SessionStatus = "FINISHED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusFinished, SessionStatusAbandoned:
		return true
	}
	return false
}
