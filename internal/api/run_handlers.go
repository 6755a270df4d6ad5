package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
)

type joinRequest struct {
	Code     string  `json:"code" validate:"required,min=4,max=12"`
	Nickname *string `json:"nickname" validate:"omitempty,max=40"`
}

type answerRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
	CardID   string `json:"cardId" validate:"required"`
	Label    string `json:"label" validate:"required"`
}

func (s *Server) handleJoinRun(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.RunService.Join(r.Context(), req.Code, trimPtr(req.Nickname))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	playerID, err := requiredQuery(r, "playerId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.PracticeService.Next(r.Context(), chi.URLParam(r, "runID"), playerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	label, err := models.ParseLabel(req.Label)
	if err != nil {
		handleError(w, r, errors.NewValidationError("label", "must be KNOW or REFRESHER"))
		return
	}

	runID := chi.URLParam(r, "runID")
	logger.FromContext(r.Context()).Debug("answer received: run_id=%s, card_id=%s, label=%s", runID, req.CardID, label)

	res, err := s.PracticeService.Answer(r.Context(), runID, req.PlayerID, req.CardID, label)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	playerID, err := requiredQuery(r, "playerId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.PracticeService.Progress(r.Context(), chi.URLParam(r, "runID"), playerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	playerID, err := requiredQuery(r, "playerId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.PracticeService.Summary(r.Context(), chi.URLParam(r, "runID"), playerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleEndRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.RunService.End(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, run)
}
