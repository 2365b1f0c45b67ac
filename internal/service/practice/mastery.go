package practice

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"

	"github.com/oratoria/oratoria-backend/internal/service/practice/textmatch"
)

// ApplyVerdicts folds one session's verdicts into the per-word mastery
// records. Records are keyed by normalized word; multiple occurrences of
// the same word in the speech aggregate into one record. Words without a
// verdict this session are left untouched.
//
// The input map is mutated in place; newly created records are returned so
// the caller knows what to insert rather than update.
func ApplyVerdicts(
	records map[string]*domain.MasteryRecord,
	verdicts []domain.WordVerdict,
	cfg domain.PracticeConfig,
	now time.Time,
) []*domain.MasteryRecord {
	simple := cfg.SimpleWordSet()

	var created []*domain.MasteryRecord
	for _, v := range verdicts {
		word := textmatch.Normalize(v.Word)
		if word == "" {
			continue
		}

		rec, ok := records[word]
		if !ok {
			_, isSimple := simple[word]
			rec = &domain.MasteryRecord{
				Word:     word,
				IsSimple: isSimple,
			}
			records[word] = rec
			created = append(created, rec)
		}

		switch v.Verdict {
		case domain.VerdictCorrect:
			rec.CorrectCount++
		case domain.VerdictHesitated:
			rec.HesitatedCount++
		case domain.VerdictSkipped, domain.VerdictMissed:
			rec.MissedCount++
		}
		rec.LastSeenAt = now
	}
	return created
}

// LastVerdicts maps each normalized word to its worst verdict of the
// session. Worst wins so a word both recalled and missed at different
// positions stays visible next time.
func LastVerdicts(verdicts []domain.WordVerdict) map[string]domain.VerdictType {
	out := make(map[string]domain.VerdictType, len(verdicts))
	for _, v := range verdicts {
		word := textmatch.Normalize(v.Word)
		if word == "" {
			continue
		}
		prev, ok := out[word]
		if !ok || verdictSeverity(v.Verdict) > verdictSeverity(prev) {
			out[word] = v.Verdict
		}
	}
	return out
}

func verdictSeverity(v domain.VerdictType) int {
	switch v {
	case domain.VerdictMissed:
		return 3
	case domain.VerdictSkipped:
		return 2
	case domain.VerdictHesitated:
		return 1
	default:
		return 0
	}
}
