package domain

import (
	"time"
)

// SRSConfig holds the tunable parameters of the deadline-capped SM-2
// scheduler (pure domain type).
type SRSConfig struct {
	// LearningSteps are the intra-day delays walked through in LEARNING
	// state. Default: [1m, 10m].
	LearningSteps []time.Duration
	// GraduatingIntervalMinutes is the first REVIEW interval. Default: 1440.
	GraduatingIntervalMinutes int
	// EasyIntervalMinutes is the interval after an EASY graduation.
	// Default: 4 * 1440.
	EasyIntervalMinutes int
	DefaultEaseFactor   float64
	MinEaseFactor       float64
	MaxEaseFactor       float64
}

// PracticeConfig holds the tunable constants of the matching, mastery and
// visibility logic. The simple-word set and hide thresholds are product
// tuning, not laws of the domain.
type PracticeConfig struct {
	// MatchThreshold is the minimum similarity for a spoken token to match
	// the expected word during live practice. Default: 0.5.
	MatchThreshold float64
	// Lookahead is how many words ahead the matcher scans for a skip match.
	// Default: 3.
	Lookahead int
	// SimpleWords is the closed-class function-word set (normalized forms)
	// that hides after fewer correct repetitions.
	SimpleWords []string
	// SimpleHideAfter is the correct-count at which a simple word hides.
	// Default: 2.
	SimpleHideAfter int
	// HideAfter is the correct-count at which any other word hides.
	// Default: 4.
	HideAfter int
	// RecoveryMargin is the net correct-over-failure margin a previously
	// struggled word must prove before hiding. Default: 2.
	RecoveryMargin int
}

// SimpleWordSet returns the configured simple words as a lookup set.
func (c PracticeConfig) SimpleWordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.SimpleWords))
	for _, w := range c.SimpleWords {
		set[w] = struct{}{}
	}
	return set
}
