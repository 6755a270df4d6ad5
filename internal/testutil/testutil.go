package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrun/internal/db"
	"github.com/vytor/flashrun/internal/mastery"
	"github.com/vytor/flashrun/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is limited to one connection, so each test gets its own database.
func NewTestDB(t *testing.T) *sqlx.DB {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Fixture is a deck with cards, a run over them and one joined player.
type Fixture struct {
	Deck   models.Deck
	Cards  []models.Card
	Run    models.Run
	Player models.Player
}

// SeedRun inserts a published deck with the given card fronts, an active run
// over all of them and a player whose states start at the initial weight.
func SeedRun(t *testing.T, sdb *sqlx.DB, fronts ...string) Fixture {
	ctx := context.Background()
	now := time.Now().UTC()

	f := Fixture{
		Deck: models.Deck{ID: uuid.NewString(), Title: "Test deck", IsPublished: true, CreatedAt: now, UpdatedAt: now},
	}
	_, err := sdb.ExecContext(ctx, `INSERT INTO decks (id, title, is_published, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
		f.Deck.ID, f.Deck.Title, now, now)
	require.NoError(t, err)

	for i, front := range fronts {
		c := models.Card{
			ID: uuid.NewString(), DeckID: f.Deck.ID, Front: front, Back: front + " back",
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond), UpdatedAt: now,
		}
		_, err := sdb.ExecContext(ctx, `INSERT INTO cards (id, deck_id, front, back, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.DeckID, c.Front, c.Back, c.CreatedAt, c.UpdatedAt)
		require.NoError(t, err)
		f.Cards = append(f.Cards, c)
	}

	f.Run = models.Run{
		ID: uuid.NewString(), DeckID: f.Deck.ID, Code: "T" + uuid.NewString()[:5],
		Status: models.RunActive, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	_, err = sdb.ExecContext(ctx, `INSERT INTO deck_runs (id, deck_id, code, status, expires_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Run.ID, f.Run.DeckID, f.Run.Code, string(f.Run.Status), f.Run.ExpiresAt, f.Run.CreatedAt)
	require.NoError(t, err)

	f.Player = models.Player{ID: uuid.NewString(), RunID: f.Run.ID, CreatedAt: now}
	_, err = sdb.ExecContext(ctx, `INSERT INTO players (id, run_id, created_at) VALUES (?, ?, ?)`, f.Player.ID, f.Run.ID, now)
	require.NoError(t, err)

	for i, c := range f.Cards {
		f.Run.CardIDs = append(f.Run.CardIDs, c.ID)
		_, err = sdb.ExecContext(ctx, `INSERT INTO run_cards (run_id, card_id, position) VALUES (?, ?, ?)`, f.Run.ID, c.ID, i)
		require.NoError(t, err)
		_, err = sdb.ExecContext(ctx, `INSERT INTO player_card_states (player_id, card_id, weight, updated_at) VALUES (?, ?, ?, ?)`,
			f.Player.ID, c.ID, mastery.InitialWeight, now)
		require.NoError(t, err)
	}
	return f
}
