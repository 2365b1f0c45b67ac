package practice

import (
	"github.com/oratoria/oratoria-backend/internal/domain"

	"github.com/oratoria/oratoria-backend/internal/service/practice/textmatch"
)

// ShouldHide decides whether one word may be blanked out in the next
// session. lastVerdict is the word's worst verdict from the most recent
// session, nil if the word was not scored then.
//
// The rules apply in order; the first that fires wins:
//
//  1. Missed or hesitated last session: stay visible, whatever the history.
//  2. Ever-struggled words must prove a net recovery margin before hiding.
//  3. Simple function words hide after fewer correct recalls.
//  4. Everything else hides after the full correct-count threshold.
func ShouldHide(rec *domain.MasteryRecord, lastVerdict *domain.VerdictType, cfg domain.PracticeConfig) bool {
	if rec == nil {
		return false
	}
	if lastVerdict != nil {
		switch *lastVerdict {
		case domain.VerdictMissed, domain.VerdictSkipped, domain.VerdictHesitated:
			return false
		}
	}

	margin := cfg.RecoveryMargin
	if margin == 0 {
		margin = 2
	}
	if rec.HasStruggled() && rec.NetRecoveries() < margin {
		return false
	}

	simpleAfter := cfg.SimpleHideAfter
	if simpleAfter == 0 {
		simpleAfter = 2
	}
	if rec.IsSimple && rec.CorrectCount >= simpleAfter {
		return true
	}

	hideAfter := cfg.HideAfter
	if hideAfter == 0 {
		hideAfter = 4
	}
	return rec.CorrectCount >= hideAfter
}

// HiddenPositions applies ShouldHide across the whole token stream and
// returns the positions to blank out, in order.
func HiddenPositions(
	tokens []domain.WordToken,
	records map[string]*domain.MasteryRecord,
	lastVerdicts map[string]domain.VerdictType,
	cfg domain.PracticeConfig,
) []int {
	var hidden []int
	for _, tok := range tokens {
		rec := records[tok.Normalized]
		var last *domain.VerdictType
		if v, ok := lastVerdicts[tok.Normalized]; ok {
			last = &v
		}
		if ShouldHide(rec, last, cfg) {
			hidden = append(hidden, tok.Position)
		}
	}
	return hidden
}

// VisibilityPercent returns how much of the text remains visible after
// hiding, in [0, 100]. An empty speech counts as fully visible.
func VisibilityPercent(totalWords, hiddenWords int) float64 {
	if totalWords <= 0 {
		return 100
	}
	if hiddenWords < 0 {
		hiddenWords = 0
	}
	if hiddenWords > totalWords {
		hiddenWords = totalWords
	}
	return float64(totalWords-hiddenWords) / float64(totalWords) * 100
}

// TargetVisibility computes how much text the learner should ideally still
// see, given deadline pressure and recent performance. Used for progress
// display, not to force-hide words that have not earned it.
//
// The curve itself is product tuning: visibility falls with weighted
// accuracy and deadline proximity, recovers with a negative trend or
// consecutive struggles.
func TargetVisibility(daysRemaining int, weightedAccuracy, trend float64, struggles int) float64 {
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	mastery := weightedAccuracy / 100
	if mastery > 1 {
		mastery = 1
	}
	if mastery < 0 {
		mastery = 0
	}

	// Pressure grows as the deadline nears: 1.0 on deadline day, about
	// half with a week to go.
	pressure := 7.0 / (7.0 + float64(daysRemaining))

	// A rising trend removes more text; a falling one backs off.
	confidence := 0.5 + 0.25*(trend+1) // [0.5, 1.0]

	target := 100 - 100*mastery*pressure*confidence

	// Every consecutive struggling session restores a chunk of text.
	target += 15 * float64(struggles)

	if target > 100 {
		target = 100
	}
	if target < 0 {
		target = 0
	}
	return target
}

// BuildVisibility is the full per-session pipeline: tokenize decision is
// the caller's, here we just combine hiding with the percent metric.
func BuildVisibility(
	tokens []domain.WordToken,
	records map[string]*domain.MasteryRecord,
	lastVerdicts map[string]domain.VerdictType,
	cfg domain.PracticeConfig,
) (hidden []int, percent float64) {
	hidden = HiddenPositions(tokens, records, lastVerdicts, cfg)
	return hidden, VisibilityPercent(len(tokens), len(hidden))
}

// mapRecordsByWord indexes persisted mastery rows for the pipeline.
func mapRecordsByWord(recs []*domain.MasteryRecord) map[string]*domain.MasteryRecord {
	out := make(map[string]*domain.MasteryRecord, len(recs))
	for _, r := range recs {
		out[textmatch.Normalize(r.Word)] = r
	}
	return out
}
