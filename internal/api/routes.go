package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/decks", s.handleCreateDeck)
		r.Route("/decks/{deckID}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleAddCard)
			r.Post("/publish", s.handlePublishDeck)
			r.Post("/runs", s.handleStartRun)
			r.Get("/analytics", s.handleDeckAnalytics)
		})

		r.Post("/runs/join", s.handleJoinRun)
		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/next", s.handleNext)
			r.Post("/answer", s.handleAnswer)
			r.Get("/progress", s.handleProgress)
			r.Get("/summary", s.handleSummary)
			r.Post("/end", s.handleEndRun)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute(r))
	})
	return r
}
