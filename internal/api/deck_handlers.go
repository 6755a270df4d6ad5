package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/services"
)

type createDeckRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Language    *string `json:"language" validate:"omitempty,min=2,max=10"`
}

type addCardRequest struct {
	Front    string  `json:"front" validate:"required,min=1,max=400"`
	Back     string  `json:"back" validate:"required,min=1,max=400"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

type publishRequest struct {
	IsPublished *bool `json:"isPublished" validate:"required"`
}

type startRunResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), services.DeckInput{
		Title:       req.Title,
		Description: trimPtr(req.Description),
		Language:    trimPtr(req.Language),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.DeckService.ListCards(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req addCardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.AddCard(r.Context(), chi.URLParam(r, "deckID"), services.CardInput{
		Front:    req.Front,
		Back:     req.Back,
		ImageURL: trimPtr(req.ImageURL),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handlePublishDeck(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.SetPublished(r.Context(), chi.URLParam(r, "deckID"), *req.IsPublished)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	logger.FromContext(r.Context()).WithField("deck_id", deckID).Info("starting run")

	run, err := s.RunService.StartRun(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, startRunResponse{ID: run.ID, Code: run.Code, ExpiresAt: run.ExpiresAt})
}

func (s *Server) handleDeckAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.DeckService.Analytics(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, analytics)
}
