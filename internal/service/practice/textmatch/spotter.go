package textmatch

import (
	"strings"
)

// SpotPhrase reports whether the multi-word phrase occurs in the transcript.
// Matching is word-by-word under the Levenshtein budget (StrategyLevenshtein),
// sliding a window of the phrase's word count across the transcript. Used for
// cue-phrase detection ("skip ahead", "start over"), not for scoring.
func SpotPhrase(transcript, phrase string) bool {
	phraseWords := strings.Fields(NormalizePhrase(phrase))
	if len(phraseWords) == 0 {
		return false
	}

	transcriptWords := strings.Fields(transcript)
	if len(transcriptWords) < len(phraseWords) {
		return false
	}

	for start := 0; start+len(phraseWords) <= len(transcriptWords); start++ {
		all := true
		for i, pw := range phraseWords {
			if !WithinEditBudget(transcriptWords[start+i], pw) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
