package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

type playerRepository struct {
	db *sqlx.DB
}

// NewPlayerRepository creates a new PlayerRepository implementation
func NewPlayerRepository(db *sqlx.DB) repository.PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Get(ctx context.Context, id string) (*models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player: id=%s", id)

	var p models.Player
	found, err := get(ctx, r.db, &p, sqlBuilder.Select("id", "run_id", "nickname", "created_at").
		From("players").
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to get player: %v", err)
		return nil, err
	}
	if !found {
		log.Debug("player not found: id=%s", id)
		return nil, nil
	}
	return &p, nil
}

func (r *playerRepository) Join(ctx context.Context, p models.Player, states []models.PlayerCardState) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("player joining run: player_id=%s, run_id=%s, states=%d", p.ID, p.RunID, len(states))

	return tx(ctx, r.db, func(t *sqlx.Tx) error {
		if _, err := exec(ctx, t, sqlBuilder.Insert("players").
			Columns("id", "run_id", "nickname", "created_at").
			Values(p.ID, p.RunID, p.Nickname, p.CreatedAt)); err != nil {
			log.Error("failed to insert player: %v", err)
			return err
		}
		if len(states) == 0 {
			return nil
		}
		ins := sqlBuilder.Insert("player_card_states").
			Options("OR IGNORE").
			Columns("player_id", "card_id", "know_count", "refresher_count", "weight", "mastered", "version", "updated_at")
		for _, s := range states {
			ins = ins.Values(s.PlayerID, s.CardID, s.KnowCount, s.RefresherCount, s.Weight, s.Mastered, s.Version, s.UpdatedAt)
		}
		if _, err := exec(ctx, t, ins); err != nil {
			log.Error("failed to seed player states: %v", err)
			return err
		}
		return nil
	})
}
