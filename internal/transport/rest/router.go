package rest

import "net/http"

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Health  *HealthHandler
	Speech  *SpeechHandler
	Session *SessionHandler
	Stats   *StatsHandler
}

// NewRouter builds the HTTP route table. Authentication and the rest of the
// middleware chain are applied by the caller.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /api/speeches", h.Speech.Create)
	mux.HandleFunc("GET /api/speeches", h.Speech.List)
	mux.HandleFunc("GET /api/speeches/{id}", h.Speech.Get)
	mux.HandleFunc("PATCH /api/speeches/{id}", h.Speech.Update)
	mux.HandleFunc("DELETE /api/speeches/{id}", h.Speech.Delete)

	mux.HandleFunc("GET /api/speeches/{id}/sessions", h.Stats.SessionHistory)
	mux.HandleFunc("GET /api/speeches/{id}/card/logs", h.Stats.CardHistory)

	mux.HandleFunc("POST /api/sessions", h.Session.Start)
	mux.HandleFunc("GET /api/sessions/active", h.Session.Active)
	mux.HandleFunc("POST /api/sessions/abandon", h.Session.Abandon)
	mux.HandleFunc("POST /api/sessions/{id}/feed", h.Session.Feed)
	mux.HandleFunc("POST /api/sessions/{id}/finish", h.Session.Finish)

	mux.HandleFunc("GET /api/dashboard", h.Stats.Dashboard)
	mux.HandleFunc("GET /api/cards/due", h.Stats.DueCards)
	mux.HandleFunc("GET /api/mastery", h.Stats.Mastery)

	return mux
}
