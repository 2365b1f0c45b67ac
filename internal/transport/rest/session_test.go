package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
)

type sessionServiceMock struct {
	StartSessionFunc     func(ctx context.Context, input practice.StartSessionInput) (*practice.StartSessionOutput, error)
	FeedTokensFunc       func(ctx context.Context, input practice.FeedInput) (*practice.FeedOutput, error)
	FinishSessionFunc    func(ctx context.Context, input practice.FinishSessionInput) (*domain.PracticeSession, error)
	AbandonSessionFunc   func(ctx context.Context) error
	GetActiveSessionFunc func(ctx context.Context) (*domain.PracticeSession, error)
}

func (m *sessionServiceMock) StartSession(ctx context.Context, input practice.StartSessionInput) (*practice.StartSessionOutput, error) {
	return m.StartSessionFunc(ctx, input)
}

func (m *sessionServiceMock) FeedTokens(ctx context.Context, input practice.FeedInput) (*practice.FeedOutput, error) {
	return m.FeedTokensFunc(ctx, input)
}

func (m *sessionServiceMock) FinishSession(ctx context.Context, input practice.FinishSessionInput) (*domain.PracticeSession, error) {
	return m.FinishSessionFunc(ctx, input)
}

func (m *sessionServiceMock) AbandonSession(ctx context.Context) error {
	return m.AbandonSessionFunc(ctx)
}

func (m *sessionServiceMock) GetActiveSession(ctx context.Context) (*domain.PracticeSession, error) {
	return m.GetActiveSessionFunc(ctx)
}

func testSession() *domain.PracticeSession {
	return &domain.PracticeSession{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		SpeechID:          uuid.New(),
		Status:            domain.SessionStatusActive,
		StartedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		VisibilityPercent: 80,
	}
}

func TestSessionStart_OK(t *testing.T) {
	t.Parallel()

	session := testSession()
	svc := &sessionServiceMock{
		StartSessionFunc: func(_ context.Context, input practice.StartSessionInput) (*practice.StartSessionOutput, error) {
			if input.SpeechID != session.SpeechID {
				t.Errorf("expected speech id %s, got %s", session.SpeechID, input.SpeechID)
			}
			return &practice.StartSessionOutput{
				Session: session,
				Tokens: []domain.WordToken{
					{Raw: "Four", Normalized: "four", Position: 0, SentenceStart: true},
					{Raw: "score", Normalized: "score", Position: 1},
				},
				HiddenPositions:   []int{1},
				VisibilityPercent: 80,
				TargetVisibility:  60,
			}, nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions",
		jsonBody(t, map[string]any{"speechId": session.SpeechID.String()}))
	rec := httptest.NewRecorder()

	h.Start(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp startSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session.ID != session.ID.String() {
		t.Errorf("expected session id %s, got %s", session.ID, resp.Session.ID)
	}
	if len(resp.HiddenPositions) != 1 || resp.HiddenPositions[0] != 1 {
		t.Errorf("expected hidden positions [1], got %v", resp.HiddenPositions)
	}
	if resp.TargetVisibility != 60 {
		t.Errorf("expected target visibility 60, got %v", resp.TargetVisibility)
	}
}

func TestSessionStart_InvalidSpeechID(t *testing.T) {
	t.Parallel()

	h := NewSessionHandler(&sessionServiceMock{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions",
		jsonBody(t, map[string]any{"speechId": "nope"}))
	rec := httptest.NewRecorder()

	h.Start(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSessionFeed_OK(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	svc := &sessionServiceMock{
		FeedTokensFunc: func(_ context.Context, input practice.FeedInput) (*practice.FeedOutput, error) {
			if input.SessionID != sessionID {
				t.Errorf("expected session id %s, got %s", sessionID, input.SessionID)
			}
			if len(input.Words) != 2 {
				t.Fatalf("expected 2 words, got %d", len(input.Words))
			}
			if input.Words[1].OffsetMs != 900 {
				t.Errorf("expected offset 900, got %d", input.Words[1].OffsetMs)
			}
			return &practice.FeedOutput{
				Verdicts: []domain.WordVerdict{
					{Position: 0, Word: "Four", Verdict: domain.VerdictCorrect, ElapsedMs: 400},
				},
				Cursor:        1,
				HintInitialMs: 4000,
				HintStepMs:    2000,
			}, nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID.String()+"/feed",
		jsonBody(t, map[string]any{
			"words": []map[string]any{
				{"text": "four", "offsetMs": 400},
				{"text": "score", "offsetMs": 900},
			},
		}))
	req.SetPathValue("id", sessionID.String())
	rec := httptest.NewRecorder()

	h.Feed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp feedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Cursor != 1 {
		t.Errorf("expected cursor 1, got %d", resp.Cursor)
	}
	if len(resp.Verdicts) != 1 || resp.Verdicts[0].Verdict != "CORRECT" {
		t.Errorf("unexpected verdicts: %+v", resp.Verdicts)
	}
	if resp.HintInitialMs != 4000 {
		t.Errorf("expected hint initial 4000, got %d", resp.HintInitialMs)
	}
}

func TestSessionFeed_LiveStateLost(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	svc := &sessionServiceMock{
		FeedTokensFunc: func(_ context.Context, _ practice.FeedInput) (*practice.FeedOutput, error) {
			return nil, domain.ErrConflict
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID.String()+"/feed",
		jsonBody(t, map[string]any{"words": []map[string]any{{"text": "four", "offsetMs": 0}}}))
	req.SetPathValue("id", sessionID.String())
	rec := httptest.NewRecorder()

	h.Feed(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestSessionFinish_WithRating(t *testing.T) {
	t.Parallel()

	session := testSession()
	finished := *session
	finished.Status = domain.SessionStatusFinished
	now := session.StartedAt.Add(3 * time.Minute)
	finished.FinishedAt = &now
	finished.Result = &domain.SessionResult{
		Counts:           domain.VerdictCounts{Correct: 8, Hesitated: 1, Missed: 1},
		RawAccuracy:      85,
		WeightedAccuracy: 68,
		DurationMs:       180000,
		CompletedAt:      now,
	}

	svc := &sessionServiceMock{
		FinishSessionFunc: func(_ context.Context, input practice.FinishSessionInput) (*domain.PracticeSession, error) {
			if input.Rating == nil || *input.Rating != domain.PracticeRatingGood {
				t.Errorf("expected GOOD rating, got %v", input.Rating)
			}
			return &finished, nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID.String()+"/finish",
		jsonBody(t, map[string]any{"rating": "GOOD"}))
	req.SetPathValue("id", session.ID.String())
	rec := httptest.NewRecorder()

	h.Finish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "FINISHED" {
		t.Errorf("expected status FINISHED, got %q", resp.Status)
	}
	if resp.Result == nil {
		t.Fatal("expected result in response")
	}
	if resp.Result.Counts.Correct != 8 {
		t.Errorf("expected 8 correct, got %d", resp.Result.Counts.Correct)
	}
}

func TestSessionFinish_AlreadyFinished(t *testing.T) {
	t.Parallel()

	svc := &sessionServiceMock{
		FinishSessionFunc: func(_ context.Context, _ practice.FinishSessionInput) (*domain.PracticeSession, error) {
			return nil, domain.NewValidationError("session", "session already finished")
		},
	}
	h := NewSessionHandler(svc, testLogger())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/finish", jsonBody(t, map[string]any{}))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.Finish(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSessionAbandon_OK(t *testing.T) {
	t.Parallel()

	called := false
	svc := &sessionServiceMock{
		AbandonSessionFunc: func(_ context.Context) error {
			called = true
			return nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/abandon", nil)
	rec := httptest.NewRecorder()

	h.Abandon(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !called {
		t.Error("expected AbandonSession to be called")
	}
}

func TestSessionActive_None(t *testing.T) {
	t.Parallel()

	svc := &sessionServiceMock{
		GetActiveSessionFunc: func(_ context.Context) (*domain.PracticeSession, error) {
			return nil, nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/active", nil)
	rec := httptest.NewRecorder()

	h.Active(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestSessionActive_Found(t *testing.T) {
	t.Parallel()

	session := testSession()
	svc := &sessionServiceMock{
		GetActiveSessionFunc: func(_ context.Context) (*domain.PracticeSession, error) {
			return session, nil
		},
	}
	h := NewSessionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/active", nil)
	rec := httptest.NewRecorder()

	h.Active(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ACTIVE" {
		t.Errorf("expected status ACTIVE, got %q", resp.Status)
	}
}
