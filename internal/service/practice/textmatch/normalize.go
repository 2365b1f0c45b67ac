// Package textmatch implements the pure text-side of the practice engine:
// word normalization, similarity scoring, tokenization of speech text, and
// the realtime matcher that aligns spoken tokens with the expected words.
//
// Everything in this package is deterministic and free of I/O. The service
// layer owns persistence and timing policy; textmatch only computes.
package textmatch

import (
	"strings"
	"unicode"
)

// diacriticFolds maps regional letters to their base Latin forms. Folding
// happens before suffix stripping so "fjörður" and "fjordur" normalize the
// same way regardless of which one the STT provider emits.
var diacriticFolds = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'ā': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ē': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ī': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o", 'ō': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ū': "u",
	'ý': "y", 'ÿ': "y",
	'ñ': "n",
	'ç': "c",
	'æ': "ae",
	'œ': "oe",
	'ð': "d",
	'þ': "th",
	'ß': "ss",
}

// inflectionalSuffixes are stripped longest-first. The order matters: "-tion"
// must win over "-on", "-ing" over "-g".
var inflectionalSuffixes = []string{
	"tion", "ness", "ment", "ing", "ed", "es", "ly", "s",
}

// leadingFunctionWords are dropped from the front of multi-word phrases so
// "the tower" and "tower" normalize identically for keyword spotting.
var leadingFunctionWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "to": {}, "of": {},
}

// minStemLen guards suffix stripping: a suffix is only removed while the
// remaining stem keeps at least this many characters. Combined with
// stripping to a fixpoint this makes Normalize idempotent.
const minStemLen = 4

// Normalize canonicalizes a word for comparison:
//
//  1. lowercase
//  2. fold regional diacritics to base Latin letters
//  3. strip all non-word characters
//  4. strip inflectional suffixes to a fixpoint (stem stays >= 4 chars)
//
// Normalize is idempotent: Normalize(Normalize(w)) == Normalize(w).
func Normalize(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if folded, ok := diacriticFolds[r]; ok {
			b.WriteString(folded)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return stripSuffixes(b.String())
}

// NormalizePhrase normalizes a space-separated phrase word by word and drops
// a leading function word ("the tower" → "tower"). Used by keyword spotting,
// not by the per-word practice matcher.
func NormalizePhrase(phrase string) string {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return ""
	}

	normalized := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) > 1 {
		if _, ok := leadingFunctionWords[normalized[0]]; ok {
			normalized = normalized[1:]
		}
	}
	return strings.Join(normalized, " ")
}

// stripSuffixes removes inflectional suffixes until none applies. Stripping
// to a fixpoint rather than once keeps the function idempotent: the output
// never itself ends in a strippable suffix with a long-enough stem.
func stripSuffixes(word string) string {
	for {
		stripped := false
		for _, suffix := range inflectionalSuffixes {
			if len(word) >= minStemLen+len(suffix) && strings.HasSuffix(word, suffix) {
				word = word[:len(word)-len(suffix)]
				stripped = true
				break
			}
		}
		if !stripped {
			return word
		}
	}
}
