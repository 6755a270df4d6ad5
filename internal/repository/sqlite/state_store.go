package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

var stateColumns = []string{
	"s.player_id", "s.card_id", "s.know_count", "s.refresher_count",
	"s.weight", "s.mastered", "s.version", "s.updated_at",
}

var stateWithCardColumns = append(append([]string{}, stateColumns...),
	`c.id AS "card.id"`, `c.front AS "card.front"`, `c.back AS "card.back"`, `c.image_url AS "card.image_url"`,
)

type stateStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
	tx bool
}

// NewStateStore creates a new StateStore implementation
func NewStateStore(db *sqlx.DB) repository.StateStore {
	return &stateStore{db: db, q: db}
}

func (s *stateStore) InTx(ctx context.Context, fn func(repository.StateStore) error) error {
	if s.tx {
		return fn(s)
	}
	return tx(ctx, s.db, func(t *sqlx.Tx) error {
		return fn(&stateStore{db: s.db, q: t, tx: true})
	})
}

func (s *stateStore) GetState(ctx context.Context, playerID, cardID string) (*models.PlayerCardState, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("getting state: player_id=%s, card_id=%s", playerID, cardID)

	var st models.PlayerCardState
	found, err := get(ctx, s.q, &st, sqlBuilder.Select(stateColumns...).
		From("player_card_states s").
		Where(squirrel.Eq{"s.player_id": playerID, "s.card_id": cardID}))
	if err != nil {
		log.Error("failed to get state: %v", err)
		return nil, err
	}
	if !found {
		log.Debug("state not found")
		return nil, nil
	}
	return &st, nil
}

func (s *stateStore) withCards() squirrel.SelectBuilder {
	return sqlBuilder.Select(stateWithCardColumns...).
		From("player_card_states s").
		Join("cards c ON c.id = s.card_id").
		Join("players p ON p.id = s.player_id").
		LeftJoin("run_cards rc ON rc.run_id = p.run_id AND rc.card_id = s.card_id")
}

// ListUnmastered returns candidates in snapshot order so sampling is stable.
func (s *stateStore) ListUnmastered(ctx context.Context, playerID string) ([]models.StateWithCard, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("listing unmastered states: player_id=%s", playerID)

	var states []models.StateWithCard
	err := selectAll(ctx, s.q, &states, s.withCards().
		Where(squirrel.Eq{"s.player_id": playerID, "s.mastered": false}).
		OrderBy("rc.position", "s.card_id"))
	if err != nil {
		log.Error("failed to list unmastered states: %v", err)
		return nil, err
	}
	log.Debug("found %d unmastered states", len(states))
	return states, nil
}

func (s *stateStore) ListStates(ctx context.Context, playerID string) ([]models.StateWithCard, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("listing states: player_id=%s", playerID)

	var states []models.StateWithCard
	err := selectAll(ctx, s.q, &states, s.withCards().
		Where(squirrel.Eq{"s.player_id": playerID}).
		OrderBy("s.updated_at ASC", "rc.position"))
	if err != nil {
		log.Error("failed to list states: %v", err)
		return nil, err
	}
	return states, nil
}

func (s *stateStore) SaveState(ctx context.Context, st models.PlayerCardState) (models.PlayerCardState, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("saving state: player_id=%s, card_id=%s, version=%d, weight=%.2f", st.PlayerID, st.CardID, st.Version, st.Weight)

	res, err := exec(ctx, s.q, sqlBuilder.Update("player_card_states").
		Set("know_count", st.KnowCount).
		Set("refresher_count", st.RefresherCount).
		Set("weight", st.Weight).
		Set("mastered", st.Mastered).
		Set("updated_at", st.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"player_id": st.PlayerID, "card_id": st.CardID, "version": st.Version}))
	if err != nil {
		log.Error("failed to save state: %v", err)
		return st, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return st, err
	}
	if n == 0 {
		log.Warn("state version conflict: player_id=%s, card_id=%s, version=%d", st.PlayerID, st.CardID, st.Version)
		return st, repository.ErrConflict
	}
	st.Version++
	return st, nil
}

func (s *stateStore) AppendResponse(ctx context.Context, r models.Response) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("appending response: player_id=%s, card_id=%s, label=%s", r.PlayerID, r.CardID, r.Label)

	_, err := exec(ctx, s.q, sqlBuilder.Insert("responses").
		Columns("player_id", "card_id", "label", "created_at").
		Values(r.PlayerID, r.CardID, string(r.Label), r.CreatedAt))
	if err != nil {
		log.Error("failed to append response: %v", err)
	}
	return err
}

func (s *stateStore) RecentResponses(ctx context.Context, playerID string, limit int) ([]models.Response, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("fetching recent responses: player_id=%s, limit=%d", playerID, limit)

	var out []models.Response
	err := selectAll(ctx, s.q, &out, sqlBuilder.
		Select("r.id", "r.player_id", "r.card_id", "r.label", "r.created_at").
		From("responses r").
		Where(squirrel.Expr("r.id IN (SELECT MAX(id) FROM responses WHERE player_id = ? GROUP BY card_id)", playerID)).
		OrderBy("r.id DESC").
		Limit(uint64(limit)))
	if err != nil {
		log.Error("failed to fetch recent responses: %v", err)
		return nil, err
	}
	return out, nil
}

func (s *stateStore) CountMastered(ctx context.Context, playerID string) (int, error) {
	return count(ctx, s.q, sqlBuilder.Select("COUNT(*)").
		From("player_card_states").
		Where(squirrel.Eq{"player_id": playerID, "mastered": true}))
}

func (s *stateStore) CountTotal(ctx context.Context, playerID string) (int, error) {
	return count(ctx, s.q, sqlBuilder.Select("COUNT(*)").
		From("player_card_states").
		Where(squirrel.Eq{"player_id": playerID}))
}
