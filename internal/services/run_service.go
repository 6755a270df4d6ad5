package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/mastery"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
	"github.com/vytor/flashrun/internal/runcode"
)

const codeAttempts = 5

// RunService manages the lifecycle of practice runs.
type RunService interface {
	StartRun(ctx context.Context, deckID string) (*models.Run, error)
	Join(ctx context.Context, code string, nickname *string) (*models.JoinResult, error)
	Get(ctx context.Context, runID string) (*models.Run, error)
	End(ctx context.Context, runID string) (*models.Run, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// RunOptions tunes a RunService. Zero values pick defaults.
type RunOptions struct {
	CodeLength int
	TTL        time.Duration
	Clock      Clock
}

type runService struct {
	decks      repository.DeckRepository
	runs       repository.RunRepository
	players    repository.PlayerRepository
	codeLength int
	ttl        time.Duration
	now        Clock
	newCode    func(int) (string, error)
}

// NewRunService creates a new RunService
func NewRunService(decks repository.DeckRepository, runs repository.RunRepository, players repository.PlayerRepository, opts RunOptions) RunService {
	s := &runService{
		decks:      decks,
		runs:       runs,
		players:    players,
		codeLength: 6,
		ttl:        120 * time.Minute,
		now:        systemClock,
		newCode:    runcode.Generate,
	}
	if opts.CodeLength > 0 {
		s.codeLength = opts.CodeLength
	}
	if opts.TTL > 0 {
		s.ttl = opts.TTL
	}
	if opts.Clock != nil {
		s.now = opts.Clock
	}
	return s
}

func (s *runService) StartRun(ctx context.Context, deckID string) (*models.Run, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)
	log.Debug("starting run")

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	if !deck.IsPublished {
		return nil, errors.NewBadRequestError("deck must be published before starting a run")
	}

	cards, err := s.decks.ListCards(ctx, deckID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		return nil, errors.NewBadRequestError("deck requires at least one card")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	run := models.Run{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		Code:      code,
		Status:    models.RunActive,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		CardIDs:   make([]string, 0, len(cards)),
	}
	for _, c := range cards {
		run.CardIDs = append(run.CardIDs, c.ID)
	}

	if err := s.runs.Create(ctx, run); err != nil {
		log.Error("failed to create run: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("run %s started with code %s over %d cards", run.ID, run.Code, len(run.CardIDs))
	return &run, nil
}

func (s *runService) uniqueCode(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)
	for attempt := 0; attempt < codeAttempts; attempt++ {
		candidate, err := s.newCode(s.codeLength)
		if err != nil {
			return "", errors.NewInternalError(err)
		}
		exists, err := s.runs.CodeExists(ctx, candidate)
		if err != nil {
			log.Error("failed to check run code: %v", err)
			return "", errors.NewInternalError(err)
		}
		if !exists {
			return candidate, nil
		}
		log.Debug("run code collision on attempt %d", attempt+1)
	}
	log.Error("unable to generate a unique run code after %d attempts", codeAttempts)
	return "", errors.NewInternalError(fmt.Errorf("no unique run code after %d attempts", codeAttempts))
}

func (s *runService) Join(ctx context.Context, code string, nickname *string) (*models.JoinResult, error) {
	code = runcode.Normalize(code)
	log := logger.FromContext(ctx).WithField("code", code)
	log.Debug("joining run")

	if len(code) < runcode.MinLength || len(code) > runcode.MaxLength {
		return nil, errors.NewValidationError("code", "must be 4 to 12 characters")
	}

	run, err := s.runs.GetByCode(ctx, code)
	if err != nil {
		log.Error("failed to load run by code: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if run == nil {
		return nil, errors.NewRunNotFoundError(code)
	}
	if err := checkRunGate(ctx, s.runs, run, s.now()); err != nil {
		return nil, err
	}

	cardIDs, err := s.runs.CardIDs(ctx, run.ID)
	if err != nil {
		log.Error("failed to load run snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	deck, err := s.decks.Get(ctx, run.DeckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", run.DeckID)
	}

	now := s.now()
	player := models.Player{
		ID:        uuid.NewString(),
		RunID:     run.ID,
		Nickname:  nickname,
		CreatedAt: now,
	}
	states := make([]models.PlayerCardState, 0, len(cardIDs))
	for _, cardID := range cardIDs {
		st := mastery.NewState(player.ID, cardID)
		st.UpdatedAt = now
		states = append(states, st)
	}

	if err := s.players.Join(ctx, player, states); err != nil {
		log.Error("failed to create player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("player %s joined run %s with %d cards", player.ID, run.ID, len(states))

	result := &models.JoinResult{RunID: run.ID, PlayerID: player.ID}
	result.Deck.Title = deck.Title
	return result, nil
}

func (s *runService) Get(ctx context.Context, runID string) (*models.Run, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load run: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if run == nil {
		return nil, errors.NewRunNotFoundError(runID)
	}
	return run, nil
}

func (s *runService) End(ctx context.Context, runID string) (*models.Run, error) {
	log := logger.FromContext(ctx).WithField("run_id", runID)

	run, err := s.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := s.runs.UpdateStatus(ctx, runID, models.RunEnded); err != nil {
		log.Error("failed to end run: %v", err)
		return nil, errors.NewInternalError(err)
	}
	run.Status = models.RunEnded
	log.Info("run ended")
	return run, nil
}

func (s *runService) ExpireStale(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	n, err := s.runs.ExpireStale(ctx, s.now())
	if err != nil {
		log.Error("failed to expire stale runs: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if n > 0 {
		log.Info("expired %d stale runs", n)
	}
	return n, nil
}
