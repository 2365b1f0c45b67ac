package textmatch

import (
	"strings"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// sentenceEnders close a sentence; the following token gets the
// SentenceStart flag and a more generous hesitation threshold.
const sentenceEnders = ".!?"

// Tokenize splits speech text into the ordered expected-word sequence.
// Tokens are position-indexed, carry their normalized comparison form, and
// are flagged when they open a sentence. Tokens that normalize to nothing
// (bare punctuation, em-dashes) are dropped so positions stay contiguous.
//
// Tokenize must be re-run whenever the speech text changes; the token list
// is derived state, never edited in place.
func Tokenize(text string) []domain.WordToken {
	fields := strings.Fields(text)
	tokens := make([]domain.WordToken, 0, len(fields))

	sentenceStart := true
	for _, raw := range fields {
		normalized := Normalize(raw)
		if normalized == "" {
			// A dropped token can still end a sentence (a bare "." or "?").
			if endsSentence(raw) {
				sentenceStart = true
			}
			continue
		}

		tokens = append(tokens, domain.WordToken{
			Raw:           raw,
			Normalized:    normalized,
			Position:      len(tokens),
			SentenceStart: sentenceStart,
		})
		sentenceStart = endsSentence(raw)
	}
	return tokens
}

// endsSentence reports whether the raw word closes a sentence. Trailing
// quotes and brackets after the punctuation mark are tolerated: `end."` and
// `end.)` both count.
func endsSentence(raw string) bool {
	trimmed := strings.TrimRight(raw, `"')]}`+"”’")
	if trimmed == "" {
		return false
	}
	return strings.ContainsRune(sentenceEnders, rune(trimmed[len(trimmed)-1]))
}
