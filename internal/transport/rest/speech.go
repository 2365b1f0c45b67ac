package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oratoria/oratoria-backend/internal/domain"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
)

// speechService defines the minimal interface needed by SpeechHandler.
type speechService interface {
	CreateSpeech(ctx context.Context, input practice.CreateSpeechInput) (*domain.Speech, error)
	GetSpeech(ctx context.Context, speechID uuid.UUID) (*domain.Speech, []domain.WordToken, error)
	ListSpeeches(ctx context.Context, input practice.ListSpeechesInput) ([]*domain.Speech, int, error)
	UpdateSpeech(ctx context.Context, input practice.UpdateSpeechInput) (*domain.Speech, error)
	DeleteSpeech(ctx context.Context, speechID uuid.UUID) error
}

// SpeechHandler serves speech CRUD endpoints.
type SpeechHandler struct {
	svc speechService
	log *slog.Logger
}

// NewSpeechHandler creates a SpeechHandler.
func NewSpeechHandler(svc speechService, logger *slog.Logger) *SpeechHandler {
	return &SpeechHandler{svc: svc, log: logger.With("handler", "speech")}
}

type createSpeechRequest struct {
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	DeadlineAt time.Time `json:"deadlineAt"`
}

type updateSpeechRequest struct {
	Title      *string    `json:"title"`
	Text       *string    `json:"text"`
	DeadlineAt *time.Time `json:"deadlineAt"`
}

type speechDetailResponse struct {
	Speech speechResponse  `json:"speech"`
	Tokens []tokenResponse `json:"tokens"`
}

type speechListResponse struct {
	Speeches []speechResponse `json:"speeches"`
	Meta     listMeta         `json:"meta"`
}

// Create handles POST /api/speeches.
func (h *SpeechHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSpeechRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	speech, err := h.svc.CreateSpeech(r.Context(), practice.CreateSpeechInput{
		Title:      req.Title,
		Text:       req.Text,
		DeadlineAt: req.DeadlineAt,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSpeechResponse(speech))
}

// Get handles GET /api/speeches/{id}.
func (h *SpeechHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}

	speech, tokens, err := h.svc.GetSpeech(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, speechDetailResponse{
		Speech: toSpeechResponse(speech),
		Tokens: toTokenResponses(tokens),
	})
}

// List handles GET /api/speeches.
func (h *SpeechHandler) List(w http.ResponseWriter, r *http.Request) {
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

	speeches, total, err := h.svc.ListSpeeches(r.Context(), practice.ListSpeechesInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	items := make([]speechResponse, 0, len(speeches))
	for _, s := range speeches {
		items = append(items, toSpeechResponse(s))
	}

	writeJSON(w, http.StatusOK, speechListResponse{
		Speeches: items,
		Meta:     listMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// Update handles PATCH /api/speeches/{id}.
func (h *SpeechHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}

	var req updateSpeechRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	speech, err := h.svc.UpdateSpeech(r.Context(), practice.UpdateSpeechInput{
		SpeechID:   id,
		Title:      req.Title,
		Text:       req.Text,
		DeadlineAt: req.DeadlineAt,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSpeechResponse(speech))
}

// Delete handles DELETE /api/speeches/{id}.
func (h *SpeechHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid speech id")
		return
	}

	if err := h.svc.DeleteSpeech(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
