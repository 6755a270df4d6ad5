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

type deckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sqlx.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Create(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("creating deck: id=%s, title=%s", d.ID, d.Title)

	_, err := exec(ctx, r.db, sqlBuilder.Insert("decks").
		Columns("id", "title", "description", "language", "is_published", "created_at", "updated_at").
		Values(d.ID, d.Title, d.Description, d.Language, d.IsPublished, d.CreatedAt, d.UpdatedAt))
	if err != nil {
		log.Error("failed to create deck: %v", err)
	}
	return err
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%s", id)

	var d models.Deck
	found, err := get(ctx, r.db, &d, sqlBuilder.
		Select("id", "title", "description", "language", "is_published", "created_at", "updated_at").
		From("decks").
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	if !found {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	return &d, nil
}

func (r *deckRepository) SetPublished(ctx context.Context, id string, published bool, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("setting deck published: id=%s, published=%t", id, published)

	_, err := exec(ctx, r.db, sqlBuilder.Update("decks").
		Set("is_published", published).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to update deck: %v", err)
	}
	return err
}

func (r *deckRepository) AddCard(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("adding card: deck_id=%s, card_id=%s", c.DeckID, c.ID)

	_, err := exec(ctx, r.db, sqlBuilder.Insert("cards").
		Columns("id", "deck_id", "front", "back", "image_url", "created_at", "updated_at").
		Values(c.ID, c.DeckID, c.Front, c.Back, c.ImageURL, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		log.Error("failed to add card: %v", err)
	}
	return err
}

func (r *deckRepository) ListCards(ctx context.Context, deckID string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing cards: deck_id=%s", deckID)

	var cards []models.Card
	err := selectAll(ctx, r.db, &cards, sqlBuilder.
		Select("id", "deck_id", "front", "back", "image_url", "created_at", "updated_at").
		From("cards").
		Where(squirrel.Eq{"deck_id": deckID}).
		OrderBy("created_at ASC", "id"))
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *deckRepository) ListStates(ctx context.Context, deckID string) ([]models.StateRow, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing player states for deck: deck_id=%s", deckID)

	var rows []models.StateRow
	err := selectAll(ctx, r.db, &rows, sqlBuilder.
		Select("s.player_id", "s.card_id", "s.know_count", "s.refresher_count", "s.mastered").
		From("player_card_states s").
		Join("cards c ON c.id = s.card_id").
		Where(squirrel.Eq{"c.deck_id": deckID}))
	if err != nil {
		log.Error("failed to list deck states: %v", err)
		return nil, err
	}
	return rows, nil
}
