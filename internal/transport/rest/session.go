package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
)

// sessionService defines the minimal interface needed by SessionHandler.
type sessionService interface {
	StartSession(ctx context.Context, input practice.StartSessionInput) (*practice.StartSessionOutput, error)
	FeedTokens(ctx context.Context, input practice.FeedInput) (*practice.FeedOutput, error)
	FinishSession(ctx context.Context, input practice.FinishSessionInput) (*domain.PracticeSession, error)
	AbandonSession(ctx context.Context) error
	GetActiveSession(ctx context.Context) (*domain.PracticeSession, error)
}

// SessionHandler serves the live practice session endpoints.
type SessionHandler struct {
	svc sessionService
	log *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.With("handler", "session")}
}

type startSessionRequest struct {
	SpeechID string `json:"speechId"`
}

type startSessionResponse struct {
	Session           sessionResponse `json:"session"`
	Tokens            []tokenResponse `json:"tokens"`
	HiddenPositions   []int           `json:"hiddenPositions"`
	VisibilityPercent float64         `json:"visibilityPercent"`
	TargetVisibility  float64         `json:"targetVisibility"`
}

type spokenWordRequest struct {
	Text      string `json:"text"`
	OffsetMs  int64  `json:"offsetMs"`
	HintShown bool   `json:"hintShown"`
}

type feedRequest struct {
	Words []spokenWordRequest `json:"words"`
}

type feedResponse struct {
	Verdicts      []verdictResponse `json:"verdicts"`
	Cursor        int               `json:"cursor"`
	Done          bool              `json:"done"`
	HintInitialMs int64             `json:"hintInitialMs"`
	HintStepMs    int64             `json:"hintStepMs"`
}

type finishSessionRequest struct {
	Rating     *string             `json:"rating"`
	Transcript []spokenWordRequest `json:"transcript"`
	DurationMs *int64              `json:"durationMs"`
}

// Start handles POST /api/sessions. Starting a session for the speech that
// already has an active one returns that session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	speechID, err := uuid.Parse(req.SpeechID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}

	out, err := h.svc.StartSession(r.Context(), practice.StartSessionInput{SpeechID: speechID})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		Session:           toSessionResponse(out.Session),
		Tokens:            toTokenResponses(out.Tokens),
		HiddenPositions:   out.HiddenPositions,
		VisibilityPercent: out.VisibilityPercent,
		TargetVisibility:  out.TargetVisibility,
	})
}

// Feed handles POST /api/sessions/{id}/feed.
func (h *SessionHandler) Feed(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req feedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.FeedTokens(r.Context(), practice.FeedInput{
		SessionID: sessionID,
		Words:     toSpokenWords(req.Words),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Verdicts:      toVerdictResponses(out.Verdicts),
		Cursor:        out.Cursor,
		Done:          out.Done,
		HintInitialMs: out.HintInitialMs,
		HintStepMs:    out.HintStepMs,
	})
}

// Finish handles POST /api/sessions/{id}/finish.
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req finishSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := practice.FinishSessionInput{
		SessionID:  sessionID,
		Transcript: toSpokenWords(req.Transcript),
		DurationMs: req.DurationMs,
	}
	if req.Rating != nil {
		rating := domain.PracticeRating(*req.Rating)
		input.Rating = &rating
	}

	session, err := h.svc.FinishSession(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Abandon handles POST /api/sessions/abandon. Idempotent.
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.AbandonSession(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Active handles GET /api/sessions/active. Returns 204 when no session is
// active.
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetActiveSession(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func toSpokenWords(words []spokenWordRequest) []practice.SpokenWord {
	if len(words) == 0 {
		return nil
	}
	out := make([]practice.SpokenWord, 0, len(words))
	for _, w := range words {
		out = append(out, practice.SpokenWord{
			Text:      w.Text,
			OffsetMs:  w.OffsetMs,
			HintShown: w.HintShown,
		})
	}
	return out
}
