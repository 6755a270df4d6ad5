package services

import (
	"context"
	"time"

	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

// Clock returns the current time. Services always work in UTC.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// loadActiveRun returns the run if it exists and is accepting play. A run
// found past its deadline is marked EXPIRED before RunExpired is returned.
func loadActiveRun(ctx context.Context, runs repository.RunRepository, runID string, now time.Time) (*models.Run, error) {
	log := logger.FromContext(ctx)

	run, err := runs.Get(ctx, runID)
	if err != nil {
		log.Error("failed to load run: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if run == nil {
		return nil, errors.NewRunNotFoundError(runID)
	}
	if err := checkRunGate(ctx, runs, run, now); err != nil {
		return nil, err
	}
	return run, nil
}

func checkRunGate(ctx context.Context, runs repository.RunRepository, run *models.Run, now time.Time) error {
	if run.Status != models.RunActive {
		return errors.NewRunInactiveError(run.ID)
	}
	if run.ExpiredAt(now) {
		logger.FromContext(ctx).Info("run %s passed its deadline, marking expired", run.ID)
		if err := runs.UpdateStatus(ctx, run.ID, models.RunExpired); err != nil {
			return errors.NewInternalError(err)
		}
		return errors.NewRunExpiredError(run.ID)
	}
	return nil
}

// loadPlayerInRun returns the player if it belongs to runID.
func loadPlayerInRun(ctx context.Context, players repository.PlayerRepository, runID, playerID string) (*models.Player, error) {
	player, err := players.Get(ctx, playerID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if player == nil || player.RunID != runID {
		return nil, errors.NewPlayerNotInRunError(playerID, runID)
	}
	return player, nil
}
