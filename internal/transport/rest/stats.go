package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
)

// statsService defines the minimal interface needed by StatsHandler.
type statsService interface {
	GetDashboard(ctx context.Context) (domain.Dashboard, error)
	GetDueCards(ctx context.Context, limit int) ([]*domain.PracticeCard, error)
	GetSessionHistory(ctx context.Context, input practice.SessionHistoryInput) ([]*domain.PracticeSession, int, error)
	GetCardHistory(ctx context.Context, speechID uuid.UUID, limit, offset int) ([]*domain.PracticeLog, int, error)
	ListMastery(ctx context.Context, input practice.MasteryListInput) ([]*domain.MasteryRecord, int, error)
}

// StatsHandler serves the dashboard and history endpoints.
type StatsHandler struct {
	svc statsService
	log *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc statsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: logger.With("handler", "stats")}
}

type cardStatusCountsResponse struct {
	New        int `json:"new"`
	Learning   int `json:"learning"`
	Review     int `json:"review"`
	Relearning int `json:"relearning"`
	Total      int `json:"total"`
}

type dashboardResponse struct {
	DueCount       int                      `json:"dueCount"`
	PracticedToday int                      `json:"practicedToday"`
	Streak         int                      `json:"streak"`
	StatusCounts   cardStatusCountsResponse `json:"statusCounts"`
	ActiveSession  *sessionResponse         `json:"activeSession,omitempty"`
}

type dueCardsResponse struct {
	Cards []cardResponse `json:"cards"`
}

type sessionHistoryResponse struct {
	Sessions []sessionResponse `json:"sessions"`
	Meta     listMeta          `json:"meta"`
}

type cardHistoryResponse struct {
	Logs []practiceLogResponse `json:"logs"`
	Meta listMeta              `json:"meta"`
}

type masteryListResponse struct {
	Records []masteryResponse `json:"records"`
	Meta    listMeta          `json:"meta"`
}

// Dashboard handles GET /api/dashboard.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := dashboardResponse{
		DueCount:       dash.DueCount,
		PracticedToday: dash.PracticedToday,
		Streak:         dash.Streak,
		StatusCounts: cardStatusCountsResponse{
			New:        dash.StatusCounts.New,
			Learning:   dash.StatusCounts.Learning,
			Review:     dash.StatusCounts.Review,
			Relearning: dash.StatusCounts.Relearning,
			Total:      dash.StatusCounts.Total,
		},
	}
	if dash.ActiveSession != nil {
		s := toSessionResponse(dash.ActiveSession)
		resp.ActiveSession = &s
	}

	writeJSON(w, http.StatusOK, resp)
}

// DueCards handles GET /api/cards/due.
func (h *StatsHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	cards, err := h.svc.GetDueCards(r.Context(), limit)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	items := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		items = append(items, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, dueCardsResponse{Cards: items})
}

// SessionHistory handles GET /api/speeches/{id}/sessions.
func (h *StatsHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	speechID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	sessions, total, err := h.svc.GetSessionHistory(r.Context(), practice.SessionHistoryInput{
		SpeechID: speechID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionHistoryResponse{
		Sessions: toSessionResponses(sessions),
		Meta:     listMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// CardHistory handles GET /api/speeches/{id}/card/logs.
func (h *StatsHandler) CardHistory(w http.ResponseWriter, r *http.Request) {
	speechID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	logs, total, err := h.svc.GetCardHistory(r.Context(), speechID, limit, offset)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, cardHistoryResponse{
		Logs: toPracticeLogResponses(logs),
		Meta: listMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// Mastery handles GET /api/mastery.
func (h *StatsHandler) Mastery(w http.ResponseWriter, r *http.Request) {
	input := practice.MasteryListInput{}

	if raw := r.URL.Query().Get("speechId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid speech id")
			return
		}
		input.SpeechID = &id
	}

	struggling, ok := queryBool(r, "struggling")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid struggling")
		return
	}
	input.Struggling = struggling

	simple, ok := queryBool(r, "simple")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid simple")
		return
	}
	input.Simple = simple

	if raw := r.URL.Query().Get("minCorrect"); raw != "" {
		v, ok := queryInt(r, "minCorrect", 0)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid minCorrect")
			return
		}
		input.MinCorrect = &v
	}

	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	input.Limit = limit

	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	input.Offset = offset

	records, total, err := h.svc.ListMastery(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, masteryListResponse{
		Records: toMasteryResponses(records),
		Meta:    listMeta{Total: total, Limit: limit, Offset: offset},
	})
}
