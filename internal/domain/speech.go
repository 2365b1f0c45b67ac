package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Speech is a block of text the user is memorizing against a deadline.
type Speech struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Title      string
	Text       string
	DeadlineAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DaysUntilDeadline returns the number of whole days between now and the
// speech deadline. Past deadlines return 0 or negative values unchanged so
// the scheduler can apply maximum pressure.
func (s *Speech) DaysUntilDeadline(now time.Time) int {
	return int(s.DeadlineAt.Sub(now).Hours() / 24)
}

// SpeechUpdateParams holds the optional fields of a speech update. Nil
// fields are left unchanged.
type SpeechUpdateParams struct {
	Title      *string
	Text       *string
	DeadlineAt *time.Time
}

// WordToken is a single expected unit of the speech text. Tokens are
// immutable once the text is fixed and regenerated whenever it changes.
type WordToken struct {
	// Raw is the word as it appears in the text, punctuation included.
	Raw string
	// Normalized is the canonical comparison form (see textmatch.Normalize).
	Normalized string
	// Position is the 0-based index within the speech.
	Position int
	// SentenceStart is true when the token follows sentence-ending
	// punctuation (or opens the text). Sentence-initial words get more
	// generous hesitation thresholds.
	SentenceStart bool
}

// IsShort reports whether the normalized form is at most 3 characters.
func (t WordToken) IsShort() bool { return len(t.Normalized) <= 3 }

// IsLong reports whether the normalized form is at least 8 characters.
func (t WordToken) IsLong() bool { return len(t.Normalized) >= 8 }

// CleanSpeechText prepares raw speech text for storage:
//   - trims leading/trailing whitespace
//   - normalizes line endings to \n
//   - compresses runs of spaces and tabs into one space
//
// Casing and punctuation are preserved: the stored text is what the user
// sees during practice.
func CleanSpeechText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
