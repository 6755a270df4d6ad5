package sqlite

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

var runColumns = []string{"id", "deck_id", "code", "status", "expires_at", "created_at"}

type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new RunRepository implementation
func NewRunRepository(db *sqlx.DB) repository.RunRepository {
	return &runRepository{db: db}
}

// Create inserts the run together with its card snapshot.
func (r *runRepository) Create(ctx context.Context, run models.Run) error {
	log := logger.FromContext(ctx).WithPrefix("run_repo")
	log.Debug("creating run: id=%s, deck_id=%s, code=%s, cards=%d", run.ID, run.DeckID, run.Code, len(run.CardIDs))

	return tx(ctx, r.db, func(t *sqlx.Tx) error {
		if _, err := exec(ctx, t, sqlBuilder.Insert("deck_runs").
			Columns(runColumns...).
			Values(run.ID, run.DeckID, run.Code, string(run.Status), run.ExpiresAt, run.CreatedAt)); err != nil {
			log.Error("failed to insert run: %v", err)
			return err
		}
		if len(run.CardIDs) == 0 {
			return nil
		}
		ins := sqlBuilder.Insert("run_cards").Columns("run_id", "card_id", "position")
		for i, cardID := range run.CardIDs {
			ins = ins.Values(run.ID, cardID, i)
		}
		if _, err := exec(ctx, t, ins); err != nil {
			log.Error("failed to insert run snapshot: %v", err)
			return err
		}
		return nil
	})
}

func (r *runRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id})
}

func (r *runRepository) GetByCode(ctx context.Context, code string) (*models.Run, error) {
	return r.getWhere(ctx, squirrel.Eq{"code": code})
}

func (r *runRepository) getWhere(ctx context.Context, where squirrel.Eq) (*models.Run, error) {
	log := logger.FromContext(ctx).WithPrefix("run_repo")
	log.Debug("getting run: %v", where)

	var run models.Run
	found, err := get(ctx, r.db, &run, sqlBuilder.Select(runColumns...).From("deck_runs").Where(where))
	if err != nil {
		log.Error("failed to get run: %v", err)
		return nil, err
	}
	if !found {
		log.Debug("run not found")
		return nil, nil
	}
	return &run, nil
}

func (r *runRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := count(ctx, r.db, sqlBuilder.Select("COUNT(*)").From("deck_runs").Where(squirrel.Eq{"code": code}))
	return n > 0, err
}

func (r *runRepository) CardIDs(ctx context.Context, runID string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("run_repo")

	var ids []string
	err := selectAll(ctx, r.db, &ids, sqlBuilder.Select("card_id").
		From("run_cards").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("position"))
	if err != nil {
		log.Error("failed to load run snapshot: %v", err)
		return nil, err
	}
	log.Debug("run %s snapshot has %d cards", runID, len(ids))
	return ids, nil
}

func (r *runRepository) UpdateStatus(ctx context.Context, id string, status models.RunStatus) error {
	log := logger.FromContext(ctx).WithPrefix("run_repo")
	log.Debug("updating run status: id=%s, status=%s", id, status)

	_, err := exec(ctx, r.db, sqlBuilder.Update("deck_runs").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to update run status: %v", err)
	}
	return err
}

func (r *runRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("run_repo")

	res, err := exec(ctx, r.db, sqlBuilder.Update("deck_runs").
		Set("status", string(models.RunExpired)).
		Where(squirrel.Eq{"status": string(models.RunActive)}).
		Where(squirrel.Lt{"expires_at": now}))
	if err != nil {
		log.Error("failed to expire stale runs: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("expired %d stale runs", n)
	return n, nil
}
