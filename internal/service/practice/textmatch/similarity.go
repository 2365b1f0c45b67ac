package textmatch

import (
	"github.com/antzucaro/matchr"
)

// Two similarity strategies coexist in the engine. They are close but not
// interchangeable, so each call site pins one explicitly:
//
//   - StrategyPositional: cheap position-wise character overlap, used by the
//     live practice matcher with a 0.5 acceptance threshold.
//   - StrategyLevenshtein: true edit distance with a length-proportional
//     budget (30% of the target length), used by multi-word keyword spotting.
type Strategy string

const (
	StrategyPositional  Strategy = "positional"
	StrategyLevenshtein Strategy = "levenshtein"
)

const (
	// prefixLengthRatio is the minimum shorter/longer length ratio for the
	// truncated-recognition shortcut to apply.
	prefixLengthRatio = 0.7
	// prefixScore is the fixed score for a prefix match under the ratio
	// rule. Models STT cutting off word endings ("remember" → "rememb").
	prefixScore = 0.85
	// editBudgetRatio is the fraction of the target length allowed as edit
	// distance by the Levenshtein strategy.
	editBudgetRatio = 0.3
)

// Similarity scores how alike two words are, in [0, 1]. Inputs are
// normalized first, so callers may pass raw words. Rules, in order:
//
//  1. equal after normalization → 1.0
//  2. either side ≤ 2 characters → exact match only (no fuzzy credit)
//  3. length ratio ≥ 0.7 and one is a prefix of the other → 0.85
//  4. position-wise character match count / longer length
//
// Symmetric: Similarity(a, b) == Similarity(b, a).
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	// Short words earn no fuzzy credit: "on" vs "in" must not half-match.
	if len(na) <= 2 || len(nb) <= 2 {
		return 0
	}

	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	ratio := float64(len(shorter)) / float64(len(longer))
	if ratio >= prefixLengthRatio && longer[:len(shorter)] == shorter {
		return prefixScore
	}

	matches := 0
	for i := 0; i < len(shorter); i++ {
		if shorter[i] == longer[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}

// WithinEditBudget reports whether spoken is within the Levenshtein budget
// of target: distance ≤ max(1, 30% of the normalized target length).
// This is the keyword-spotting variant; the live matcher uses Similarity.
func WithinEditBudget(spoken, target string) bool {
	ns, nt := Normalize(spoken), Normalize(target)
	if nt == "" {
		return false
	}
	if ns == nt {
		return true
	}
	if len(nt) <= 2 {
		return false
	}

	budget := int(editBudgetRatio * float64(len(nt)))
	if budget < 1 {
		budget = 1
	}
	return matchr.Levenshtein(ns, nt) <= budget
}

// Matches applies the named strategy with its pinned threshold.
func Matches(strategy Strategy, spoken, expected string, threshold float64) bool {
	switch strategy {
	case StrategyLevenshtein:
		return WithinEditBudget(spoken, expected)
	default:
		return Similarity(spoken, expected) >= threshold
	}
}
