package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/testutil/mocks"
)

type runDeps struct {
	decks   *mocks.MockDeckRepository
	runs    *mocks.MockRunRepository
	players *mocks.MockPlayerRepository
}

func newRunService(t *testing.T, codes ...string) (*runService, runDeps) {
	t.Helper()
	deps := runDeps{
		decks:   new(mocks.MockDeckRepository),
		runs:    new(mocks.MockRunRepository),
		players: new(mocks.MockPlayerRepository),
	}
	svc := NewRunService(deps.decks, deps.runs, deps.players, RunOptions{
		CodeLength: 6,
		TTL:        90 * time.Minute,
		Clock:      func() time.Time { return fixedNow },
	}).(*runService)
	if len(codes) > 0 {
		next := 0
		svc.newCode = func(int) (string, error) {
			c := codes[next%len(codes)]
			next++
			return c, nil
		}
	}
	return svc, deps
}

func publishedDeck() *models.Deck {
	return &models.Deck{ID: "deck-1", Title: "Spanish verbs", IsPublished: true}
}

func TestStartRun_SnapshotsCards(t *testing.T) {
	svc, deps := newRunService(t, "TAKEN1", "FRESH2")
	deps.decks.On("Get", mock.Anything, "deck-1").Return(publishedDeck(), nil)
	deps.decks.On("ListCards", mock.Anything, "deck-1").Return([]models.Card{{ID: "c1"}, {ID: "c2"}}, nil)
	deps.runs.On("CodeExists", mock.Anything, "TAKEN1").Return(true, nil)
	deps.runs.On("CodeExists", mock.Anything, "FRESH2").Return(false, nil)
	deps.runs.On("Create", mock.Anything, mock.MatchedBy(func(r models.Run) bool {
		return r.Code == "FRESH2" && r.Status == models.RunActive && len(r.CardIDs) == 2
	})).Return(nil)

	run, err := svc.StartRun(context.Background(), "deck-1")

	require.NoError(t, err)
	assert.Equal(t, "FRESH2", run.Code)
	assert.Equal(t, []string{"c1", "c2"}, run.CardIDs)
	assert.Equal(t, fixedNow.Add(90*time.Minute), run.ExpiresAt)
	assert.NotEmpty(t, run.ID)
	deps.runs.AssertExpectations(t)
}

func TestStartRun_RequiresPublishedDeck(t *testing.T) {
	svc, deps := newRunService(t)
	deck := publishedDeck()
	deck.IsPublished = false
	deps.decks.On("Get", mock.Anything, "deck-1").Return(deck, nil)

	_, err := svc.StartRun(context.Background(), "deck-1")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)
}

func TestStartRun_RequiresCards(t *testing.T) {
	svc, deps := newRunService(t)
	deps.decks.On("Get", mock.Anything, "deck-1").Return(publishedDeck(), nil)
	deps.decks.On("ListCards", mock.Anything, "deck-1").Return([]models.Card{}, nil)

	_, err := svc.StartRun(context.Background(), "deck-1")

	require.Error(t, err)
	deps.runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStartRun_GivesUpOnCodeCollisions(t *testing.T) {
	svc, deps := newRunService(t, "SAME00")
	deps.decks.On("Get", mock.Anything, "deck-1").Return(publishedDeck(), nil)
	deps.decks.On("ListCards", mock.Anything, "deck-1").Return([]models.Card{{ID: "c1"}}, nil)
	deps.runs.On("CodeExists", mock.Anything, "SAME00").Return(true, nil)

	_, err := svc.StartRun(context.Background(), "deck-1")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	deps.runs.AssertNumberOfCalls(t, "CodeExists", codeAttempts)
}

func TestJoin_SeedsStatePerSnapshotCard(t *testing.T) {
	svc, deps := newRunService(t)
	run := activeRun("run-1")
	deps.runs.On("GetByCode", mock.Anything, "ABCDEF").Return(run, nil)
	deps.runs.On("CardIDs", mock.Anything, "run-1").Return([]string{"c1", "c2", "c3"}, nil)
	deps.decks.On("Get", mock.Anything, "deck-1").Return(publishedDeck(), nil)
	deps.players.On("Join", mock.Anything, mock.MatchedBy(func(p models.Player) bool {
		return p.RunID == "run-1" && p.Nickname != nil && *p.Nickname == "ana"
	}), mock.MatchedBy(func(states []models.PlayerCardState) bool {
		if len(states) != 3 {
			return false
		}
		for _, s := range states {
			if s.Weight != 1.0 || s.KnowCount != 0 || s.Mastered {
				return false
			}
		}
		return true
	})).Return(nil)

	nickname := "ana"
	res, err := svc.Join(context.Background(), "  abcdef ", &nickname)

	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.NotEmpty(t, res.PlayerID)
	assert.Equal(t, "Spanish verbs", res.Deck.Title)
	deps.players.AssertExpectations(t)
}

func TestJoin_UnknownCode(t *testing.T) {
	svc, deps := newRunService(t)
	deps.runs.On("GetByCode", mock.Anything, "NOPE99").Return(nil, nil)

	_, err := svc.Join(context.Background(), "nope99", nil)

	assert.ErrorIs(t, err, errors.ErrRunNotFound)
}

func TestJoin_CodeLength(t *testing.T) {
	svc, deps := newRunService(t)

	_, err := svc.Join(context.Background(), "abc", nil)

	assert.ErrorIs(t, err, errors.ErrValidation)
	deps.runs.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestJoin_ExpiredRun(t *testing.T) {
	svc, deps := newRunService(t)
	run := activeRun("run-1")
	run.ExpiresAt = fixedNow.Add(-time.Second)
	deps.runs.On("GetByCode", mock.Anything, "ABCDEF").Return(run, nil)
	deps.runs.On("UpdateStatus", mock.Anything, "run-1", models.RunExpired).Return(nil)

	_, err := svc.Join(context.Background(), "ABCDEF", nil)

	assert.ErrorIs(t, err, errors.ErrRunExpired)
	deps.players.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnd_MarksRunEnded(t *testing.T) {
	svc, deps := newRunService(t)
	deps.runs.On("Get", mock.Anything, "run-1").Return(activeRun("run-1"), nil)
	deps.runs.On("UpdateStatus", mock.Anything, "run-1", models.RunEnded).Return(nil)

	run, err := svc.End(context.Background(), "run-1")

	require.NoError(t, err)
	assert.Equal(t, models.RunEnded, run.Status)
}

func TestExpireStale_UsesClock(t *testing.T) {
	svc, deps := newRunService(t)
	deps.runs.On("ExpireStale", mock.Anything, fixedNow).Return(int64(2), nil)

	n, err := svc.ExpireStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
