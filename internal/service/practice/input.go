package practice

import (
	"time"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Speech text bounds. The upper limit keeps tokenization and per-word
// bookkeeping tractable for a single speech.
const (
	maxSpeechTitleLen = 200
	maxSpeechTextLen  = 100_000
	maxSpeechWords    = 10_000
)

// CreateSpeechInput holds the parameters for creating a speech.
type CreateSpeechInput struct {
	Title      string
	Text       string
	DeadlineAt time.Time
}

// Validate checks all fields and collects all errors.
func (i *CreateSpeechInput) Validate() error {
	var errs []domain.FieldError

	if i.Title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(i.Title) > maxSpeechTitleLen {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 200 characters"})
	}
	if i.Text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if len(i.Text) > maxSpeechTextLen {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 100000 characters"})
	}
	if i.DeadlineAt.IsZero() {
		errs = append(errs, domain.FieldError{Field: "deadline_at", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateSpeechInput holds the parameters for updating a speech.
// Nil fields are left unchanged.
type UpdateSpeechInput struct {
	SpeechID   uuid.UUID
	Title      *string
	Text       *string
	DeadlineAt *time.Time
}

// Validate checks all fields and collects all errors.
func (i *UpdateSpeechInput) Validate() error {
	var errs []domain.FieldError

	if i.SpeechID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "speech_id", Message: "required"})
	}
	if i.Title == nil && i.Text == nil && i.DeadlineAt == nil {
		errs = append(errs, domain.FieldError{Field: "update", Message: "at least one field required"})
	}
	if i.Title != nil && (*i.Title == "" || len(*i.Title) > maxSpeechTitleLen) {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must be 1 to 200 characters"})
	}
	if i.Text != nil && (*i.Text == "" || len(*i.Text) > maxSpeechTextLen) {
		errs = append(errs, domain.FieldError{Field: "text", Message: "must be 1 to 100000 characters"})
	}
	if i.DeadlineAt != nil && i.DeadlineAt.IsZero() {
		errs = append(errs, domain.FieldError{Field: "deadline_at", Message: "must not be zero"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListSpeechesInput holds pagination for the speech listing.
type ListSpeechesInput struct {
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *ListSpeechesInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// StartSessionInput holds the parameters for starting a practice session.
type StartSessionInput struct {
	SpeechID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *StartSessionInput) Validate() error {
	if i.SpeechID == uuid.Nil {
		return domain.NewValidationError("speech_id", "required")
	}
	return nil
}

// SpokenWord is one recognized token from the speech-to-text stream.
type SpokenWord struct {
	Text string
	// OffsetMs is the token's offset from session start, in milliseconds.
	OffsetMs int64
	// HintShown reports whether a hint was on screen for the word under
	// the cursor when this token was spoken.
	HintShown bool
}

// FeedInput holds a batch of recognized tokens for an active session.
type FeedInput struct {
	SessionID uuid.UUID
	Words     []SpokenWord
}

// Validate checks all fields and collects all errors.
func (i *FeedInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if len(i.Words) == 0 {
		errs = append(errs, domain.FieldError{Field: "words", Message: "required"})
	}
	for _, w := range i.Words {
		if w.OffsetMs < 0 {
			errs = append(errs, domain.FieldError{Field: "words", Message: "offset_ms must be non-negative"})
			break
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FinishSessionInput holds the parameters for finishing a session.
type FinishSessionInput struct {
	SessionID uuid.UUID
	// Rating is the user's explicit self-grade. When nil the rating is
	// derived from session accuracy.
	Rating *domain.PracticeRating
	// Transcript replays the whole session when the live state was lost
	// (process restart). Ignored when live state exists.
	Transcript []SpokenWord
	DurationMs *int64
}

// Validate checks all fields and collects all errors.
func (i *FinishSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.Rating != nil && !i.Rating.IsValid() {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be AGAIN, HARD, GOOD, or EASY"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "must be non-negative"})
	}
	if i.DurationMs != nil && *i.DurationMs > 3_600_000 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "max 1 hour"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SessionHistoryInput holds the parameters for listing sessions of a speech.
type SessionHistoryInput struct {
	SpeechID uuid.UUID
	Limit    int
	Offset   int
}

// Validate checks all fields and collects all errors.
func (i *SessionHistoryInput) Validate() error {
	var errs []domain.FieldError

	if i.SpeechID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "speech_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// MasteryListInput holds the parameters for listing mastery records.
type MasteryListInput struct {
	SpeechID   *uuid.UUID
	Struggling *bool
	Simple     *bool
	MinCorrect *int
	Limit      int
	Offset     int
}

// Validate checks all fields and collects all errors.
func (i *MasteryListInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 500 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 500"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if i.MinCorrect != nil && *i.MinCorrect < 0 {
		errs = append(errs, domain.FieldError{Field: "min_correct", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
