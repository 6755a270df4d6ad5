package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/flashrun/internal/models"
)

// ErrConflict is returned by StateStore.SaveState when the row changed since it was read.
var ErrConflict = errors.New("repository: state version conflict")

// Single-row getters return nil, nil when the row does not exist.

// DeckRepository handles deck and card data access
type DeckRepository interface {
	Create(ctx context.Context, deck models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	SetPublished(ctx context.Context, id string, published bool, at time.Time) error
	AddCard(ctx context.Context, card models.Card) error
	ListCards(ctx context.Context, deckID string) ([]models.Card, error)
	ListStates(ctx context.Context, deckID string) ([]models.StateRow, error)
}

// RunRepository handles practice runs and their card snapshots
type RunRepository interface {
	Create(ctx context.Context, run models.Run) error
	Get(ctx context.Context, id string) (*models.Run, error)
	GetByCode(ctx context.Context, code string) (*models.Run, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CardIDs(ctx context.Context, runID string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status models.RunStatus) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// PlayerRepository handles players joining runs
type PlayerRepository interface {
	Get(ctx context.Context, id string) (*models.Player, error)
	// Join creates the player and seeds one state per card atomically.
	Join(ctx context.Context, player models.Player, states []models.PlayerCardState) error
}

// StateStore is the per-player card state boundary used by the practice engine.
type StateStore interface {
	GetState(ctx context.Context, playerID, cardID string) (*models.PlayerCardState, error)
	ListUnmastered(ctx context.Context, playerID string) ([]models.StateWithCard, error)
	ListStates(ctx context.Context, playerID string) ([]models.StateWithCard, error)
	// SaveState writes state if its Version still matches the stored row and
	// returns it with the bumped version, or ErrConflict.
	SaveState(ctx context.Context, state models.PlayerCardState) (models.PlayerCardState, error)
	AppendResponse(ctx context.Context, resp models.Response) error
	// RecentResponses returns the latest response per card, most recent first.
	RecentResponses(ctx context.Context, playerID string, limit int) ([]models.Response, error)
	CountMastered(ctx context.Context, playerID string) (int, error)
	CountTotal(ctx context.Context, playerID string) (int, error)
	// InTx runs fn against a store bound to a single transaction.
	InTx(ctx context.Context, fn func(StateStore) error) error
}
