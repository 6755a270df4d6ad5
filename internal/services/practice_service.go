package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/mastery"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
	"github.com/vytor/flashrun/internal/selector"
)

const defaultAnswerAttempts = 3

// PracticeService drives a player's turn-by-turn practice within a run.
type PracticeService interface {
	Next(ctx context.Context, runID, playerID string) (*models.NextResult, error)
	Answer(ctx context.Context, runID, playerID, cardID string, label models.Label) (*models.AnswerResult, error)
	Progress(ctx context.Context, runID, playerID string) (*models.Progress, error)
	Summary(ctx context.Context, runID, playerID string) (*models.Summary, error)
}

// PracticeOptions tunes a PracticeService. Zero values pick defaults.
type PracticeOptions struct {
	Random      selector.Random
	Clock       Clock
	MaxAttempts int
}

type practiceService struct {
	runs        repository.RunRepository
	players     repository.PlayerRepository
	states      repository.StateStore
	rnd         selector.Random
	now         Clock
	maxAttempts int
}

// NewPracticeService creates a new PracticeService
func NewPracticeService(runs repository.RunRepository, players repository.PlayerRepository, states repository.StateStore, opts PracticeOptions) PracticeService {
	s := &practiceService{
		runs:        runs,
		players:     players,
		states:      states,
		rnd:         selector.DefaultRandom(),
		now:         systemClock,
		maxAttempts: defaultAnswerAttempts,
	}
	if opts.Random != nil {
		s.rnd = selector.Locked(opts.Random)
	}
	if opts.Clock != nil {
		s.now = opts.Clock
	}
	if opts.MaxAttempts > 0 {
		s.maxAttempts = opts.MaxAttempts
	}
	return s
}

func (s *practiceService) Next(ctx context.Context, runID, playerID string) (*models.NextResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"run_id": runID, "player_id": playerID})
	log.Debug("selecting next card")

	if _, err := loadActiveRun(ctx, s.runs, runID, s.now()); err != nil {
		return nil, err
	}
	if _, err := loadPlayerInRun(ctx, s.players, runID, playerID); err != nil {
		return nil, err
	}

	candidates, err := s.states.ListUnmastered(ctx, playerID)
	if err != nil {
		log.Error("failed to list unmastered states: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(candidates) == 0 {
		log.Debug("all cards mastered")
		return &models.NextResult{Finished: true}, nil
	}

	if len(candidates) > selector.MinPoolForExclusion {
		recent, err := s.states.RecentResponses(ctx, playerID, selector.RecentWindow)
		if err != nil {
			log.Error("failed to load recent responses: %v", err)
			return nil, errors.NewInternalError(err)
		}
		candidates = selector.ExcludeRecent(candidates, selector.RecentCardIDs(recent, selector.RecentWindow))
	}

	idx, ok := selector.Pick(candidates, s.rnd)
	if !ok {
		return &models.NextResult{Finished: true}, nil
	}
	chosen := candidates[idx]
	log.Debug("selected card %s from %d candidates (weight=%.2f)", chosen.CardID, len(candidates), chosen.Weight)

	card := chosen.Card
	return &models.NextResult{
		Card: &card,
		Stats: &models.CardStats{
			KnowCount:      chosen.KnowCount,
			RefresherCount: chosen.RefresherCount,
		},
	}, nil
}

func (s *practiceService) Answer(ctx context.Context, runID, playerID, cardID string, label models.Label) (*models.AnswerResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"run_id": runID, "player_id": playerID, "card_id": cardID})
	log.Debug("recording answer: label=%s", label)

	if label != models.LabelKnow && label != models.LabelRefresher {
		return nil, errors.NewValidationError("label", "must be KNOW or REFRESHER")
	}
	if _, err := loadActiveRun(ctx, s.runs, runID, s.now()); err != nil {
		return nil, err
	}
	if _, err := loadPlayerInRun(ctx, s.players, runID, playerID); err != nil {
		return nil, err
	}

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var result *models.AnswerResult
		result, err = s.answerOnce(ctx, playerID, cardID, label)
		if err == nil {
			log.Debug("answer recorded: mastered=%t, progress=%d/%d", result.Mastered, result.Progress.MasteredCount, result.Progress.Total)
			return result, nil
		}
		if !stderrors.Is(err, repository.ErrConflict) {
			break
		}
		log.Warn("answer attempt %d/%d lost a concurrent update, retrying", attempt, s.maxAttempts)
	}

	if stderrors.Is(err, repository.ErrConflict) {
		return nil, errors.NewConflictError(s.maxAttempts, err)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return nil, appErr
	}
	log.Error("failed to record answer: %v", err)
	return nil, errors.NewInternalError(err)
}

// answerOnce performs one read-apply-write cycle in a single transaction.
func (s *practiceService) answerOnce(ctx context.Context, playerID, cardID string, label models.Label) (*models.AnswerResult, error) {
	var result models.AnswerResult
	err := s.states.InTx(ctx, func(tx repository.StateStore) error {
		current, err := tx.GetState(ctx, playerID, cardID)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.NewStateNotFoundError(playerID, cardID)
		}

		now := s.now()
		next := mastery.ApplyAnswer(*current, label)
		next.UpdatedAt = now
		saved, err := tx.SaveState(ctx, next)
		if err != nil {
			return err
		}
		if err := tx.AppendResponse(ctx, models.Response{
			PlayerID:  playerID,
			CardID:    cardID,
			Label:     label,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		progress, err := countProgress(ctx, tx, playerID)
		if err != nil {
			return err
		}
		result = models.AnswerResult{Mastered: saved.Mastered, Progress: progress}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *practiceService) Progress(ctx context.Context, runID, playerID string) (*models.Progress, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting progress: run_id=%s, player_id=%s", runID, playerID)

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		log.Error("failed to load player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if player == nil || player.RunID != runID {
		return nil, errors.NewPlayerNotFoundError(playerID)
	}

	progress, err := countProgress(ctx, s.states, playerID)
	if err != nil {
		log.Error("failed to count progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &progress, nil
}

func (s *practiceService) Summary(ctx context.Context, runID, playerID string) (*models.Summary, error) {
	log := logger.FromContext(ctx)
	log.Debug("building summary: run_id=%s, player_id=%s", runID, playerID)

	if _, err := loadPlayerInRun(ctx, s.players, runID, playerID); err != nil {
		return nil, err
	}
	states, err := s.states.ListStates(ctx, playerID)
	if err != nil {
		log.Error("failed to list states: %v", err)
		return nil, errors.NewInternalError(err)
	}

	summary := &models.Summary{Cards: make([]models.SummaryCard, 0, len(states))}
	for _, st := range states {
		summary.Cards = append(summary.Cards, models.SummaryCard{
			CardContent:    st.Card,
			KnowCount:      st.KnowCount,
			RefresherCount: st.RefresherCount,
			Mastered:       st.Mastered,
		})
	}
	return summary, nil
}

func countProgress(ctx context.Context, store repository.StateStore, playerID string) (models.Progress, error) {
	mastered, err := store.CountMastered(ctx, playerID)
	if err != nil {
		return models.Progress{}, err
	}
	total, err := store.CountTotal(ctx, playerID)
	if err != nil {
		return models.Progress{}, err
	}
	return models.NewProgress(mastered, total), nil
}
