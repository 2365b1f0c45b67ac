package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/pkg/ctxutil"

	"github.com/oratoria/oratoria-backend/internal/service/practice/textmatch"
)

// CreateSpeech stores a new speech and its practice card.
func (s *Service) CreateSpeech(ctx context.Context, input CreateSpeechInput) (*domain.Speech, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	text := domain.CleanSpeechText(input.Text)
	tokens := textmatch.Tokenize(text)
	if len(tokens) == 0 {
		return nil, domain.NewValidationError("text", "contains no words")
	}
	if len(tokens) > maxSpeechWords {
		return nil, domain.NewValidationError("text", "max 10000 words")
	}

	speech := &domain.Speech{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      input.Title,
		Text:       text,
		DeadlineAt: input.DeadlineAt,
	}

	var created *domain.Speech
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.speeches.Create(txCtx, speech)
		if txErr != nil {
			return fmt.Errorf("create speech: %w", txErr)
		}
		// The card is born with the speech so due listings see it as NEW
		// immediately.
		if _, txErr = s.cards.Create(txCtx, userID, created.ID, s.srsConfig.DefaultEaseFactor); txErr != nil {
			return fmt.Errorf("create card: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "speech created",
		slog.String("user_id", userID.String()),
		slog.String("speech_id", created.ID.String()),
		slog.Int("word_count", len(tokens)),
	)

	return created, nil
}

// GetSpeech returns one speech with its tokenized word sequence.
func (s *Service) GetSpeech(ctx context.Context, speechID uuid.UUID) (*domain.Speech, []domain.WordToken, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, nil, domain.ErrUnauthorized
	}
	if speechID == uuid.Nil {
		return nil, nil, domain.NewValidationError("speech_id", "required")
	}

	speech, err := s.speeches.GetByID(ctx, userID, speechID)
	if err != nil {
		return nil, nil, fmt.Errorf("get speech: %w", err)
	}
	return speech, textmatch.Tokenize(speech.Text), nil
}

// ListSpeeches returns the user's speeches with pagination.
func (s *Service) ListSpeeches(ctx context.Context, input ListSpeechesInput) ([]*domain.Speech, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	speeches, total, err := s.speeches.List(ctx, userID, limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list speeches: %w", err)
	}
	return speeches, total, nil
}

// UpdateSpeech updates the title, text or deadline of a speech. A text
// change invalidates nothing persistent: tokens are derived state and
// mastery records are keyed by word, so surviving words keep their history.
func (s *Service) UpdateSpeech(ctx context.Context, input UpdateSpeechInput) (*domain.Speech, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	params := domain.SpeechUpdateParams{
		Title:      input.Title,
		DeadlineAt: input.DeadlineAt,
	}
	if input.Text != nil {
		text := domain.CleanSpeechText(*input.Text)
		tokens := textmatch.Tokenize(text)
		if len(tokens) == 0 {
			return nil, domain.NewValidationError("text", "contains no words")
		}
		if len(tokens) > maxSpeechWords {
			return nil, domain.NewValidationError("text", "max 10000 words")
		}
		params.Text = &text
	}

	updated, err := s.speeches.Update(ctx, userID, input.SpeechID, params)
	if err != nil {
		return nil, fmt.Errorf("update speech: %w", err)
	}

	s.log.InfoContext(ctx, "speech updated",
		slog.String("user_id", userID.String()),
		slog.String("speech_id", input.SpeechID.String()),
	)

	return updated, nil
}

// DeleteSpeech removes a speech. The card, mastery records, sessions and
// logs go with it via cascading deletes.
func (s *Service) DeleteSpeech(ctx context.Context, speechID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if speechID == uuid.Nil {
		return domain.NewValidationError("speech_id", "required")
	}

	if err := s.speeches.Delete(ctx, userID, speechID); err != nil {
		return fmt.Errorf("delete speech: %w", err)
	}

	s.log.InfoContext(ctx, "speech deleted",
		slog.String("user_id", userID.String()),
		slog.String("speech_id", speechID.String()),
	)

	return nil
}
