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
	"github.com/vytor/flashrun/internal/repository"
	"github.com/vytor/flashrun/internal/selector"
	"github.com/vytor/flashrun/internal/testutil/mocks"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

type practiceDeps struct {
	runs    *mocks.MockRunRepository
	players *mocks.MockPlayerRepository
	states  *mocks.MockStateStore
}

func newPracticeService(t *testing.T, rnd float64) (PracticeService, practiceDeps) {
	t.Helper()
	deps := practiceDeps{
		runs:    new(mocks.MockRunRepository),
		players: new(mocks.MockPlayerRepository),
		states:  new(mocks.MockStateStore),
	}
	svc := NewPracticeService(deps.runs, deps.players, deps.states, PracticeOptions{
		Random:      fixedRandom(rnd),
		Clock:       func() time.Time { return fixedNow },
		MaxAttempts: 3,
	})
	return svc, deps
}

func activeRun(id string) *models.Run {
	return &models.Run{ID: id, DeckID: "deck-1", Code: "ABCDEF", Status: models.RunActive, ExpiresAt: fixedNow.Add(time.Hour)}
}

func candidate(cardID string, weight float64) models.StateWithCard {
	return models.StateWithCard{
		PlayerCardState: models.PlayerCardState{PlayerID: "p1", CardID: cardID, Weight: weight},
		Card:            models.CardContent{ID: cardID, Front: "front " + cardID, Back: "back " + cardID},
	}
}

func expectPlayable(deps practiceDeps) {
	deps.runs.On("Get", mock.Anything, "run-1").Return(activeRun("run-1"), nil)
	deps.players.On("Get", mock.Anything, "p1").Return(&models.Player{ID: "p1", RunID: "run-1"}, nil)
}

func TestNext_RunNotFound(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	deps.runs.On("Get", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.Next(context.Background(), "missing", "p1")

	assert.ErrorIs(t, err, errors.ErrRunNotFound)
}

func TestNext_RunInactive(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	run := activeRun("run-1")
	run.Status = models.RunEnded
	deps.runs.On("Get", mock.Anything, "run-1").Return(run, nil)

	_, err := svc.Next(context.Background(), "run-1", "p1")

	assert.ErrorIs(t, err, errors.ErrRunInactive)
	deps.runs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestNext_ExpiredRunIsMarked(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	run := activeRun("run-1")
	run.ExpiresAt = fixedNow.Add(-time.Minute)
	deps.runs.On("Get", mock.Anything, "run-1").Return(run, nil)
	deps.runs.On("UpdateStatus", mock.Anything, "run-1", models.RunExpired).Return(nil)

	_, err := svc.Next(context.Background(), "run-1", "p1")

	assert.ErrorIs(t, err, errors.ErrRunExpired)
	deps.runs.AssertExpectations(t)
	deps.players.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestNext_PlayerFromAnotherRun(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	deps.runs.On("Get", mock.Anything, "run-1").Return(activeRun("run-1"), nil)
	deps.players.On("Get", mock.Anything, "p1").Return(&models.Player{ID: "p1", RunID: "run-2"}, nil)

	_, err := svc.Next(context.Background(), "run-1", "p1")

	assert.ErrorIs(t, err, errors.ErrPlayerNotInRun)
}

func TestNext_FinishedWhenAllMastered(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	deps.states.On("ListUnmastered", mock.Anything, "p1").Return([]models.StateWithCard{}, nil)

	res, err := svc.Next(context.Background(), "run-1", "p1")

	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Nil(t, res.Card)
}

func TestNext_SmallPoolSkipsRecentLookup(t *testing.T) {
	svc, deps := newPracticeService(t, 0.99)
	expectPlayable(deps)
	deps.states.On("ListUnmastered", mock.Anything, "p1").Return([]models.StateWithCard{
		candidate("a", 1.0),
		candidate("b", 1.0),
	}, nil)

	res, err := svc.Next(context.Background(), "run-1", "p1")

	require.NoError(t, err)
	require.NotNil(t, res.Card)
	assert.Equal(t, "b", res.Card.ID)
	deps.states.AssertNotCalled(t, "RecentResponses", mock.Anything, mock.Anything, mock.Anything)
}

func TestNext_ExcludesRecentCards(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	deps.states.On("ListUnmastered", mock.Anything, "p1").Return([]models.StateWithCard{
		candidate("a", 1.0),
		candidate("b", 1.0),
		candidate("c", 1.0),
		candidate("d", 2.0),
		candidate("e", 1.0),
	}, nil)
	deps.states.On("RecentResponses", mock.Anything, "p1", selector.RecentWindow).Return([]models.Response{
		{CardID: "a"}, {CardID: "b"}, {CardID: "c"},
	}, nil)

	res, err := svc.Next(context.Background(), "run-1", "p1")

	require.NoError(t, err)
	require.NotNil(t, res.Card)
	assert.Equal(t, "d", res.Card.ID)
	assert.Equal(t, "front d", res.Card.Front)
	require.NotNil(t, res.Stats)
}

func TestAnswer_RejectsUnknownLabel(t *testing.T) {
	svc, deps := newPracticeService(t, 0)

	_, err := svc.Answer(context.Background(), "run-1", "p1", "a", models.Label("MAYBE"))

	assert.ErrorIs(t, err, errors.ErrValidation)
	deps.runs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAnswer_KnowUpdatesStateAndProgress(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	current := &models.PlayerCardState{PlayerID: "p1", CardID: "a", KnowCount: 2, Weight: 0.25, Version: 4}
	deps.states.On("GetState", mock.Anything, "p1", "a").Return(current, nil)
	deps.states.On("SaveState", mock.Anything, mock.MatchedBy(func(s models.PlayerCardState) bool {
		return s.KnowCount == 3 && s.Mastered && s.Weight == 0.2 && s.Version == 4 && s.UpdatedAt.Equal(fixedNow)
	})).Return(models.PlayerCardState{PlayerID: "p1", CardID: "a", KnowCount: 3, Weight: 0.2, Mastered: true, Version: 5}, nil)
	deps.states.On("AppendResponse", mock.Anything, mock.MatchedBy(func(r models.Response) bool {
		return r.PlayerID == "p1" && r.CardID == "a" && r.Label == models.LabelKnow
	})).Return(nil)
	deps.states.On("CountMastered", mock.Anything, "p1").Return(2, nil)
	deps.states.On("CountTotal", mock.Anything, "p1").Return(2, nil)

	res, err := svc.Answer(context.Background(), "run-1", "p1", "a", models.LabelKnow)

	require.NoError(t, err)
	assert.True(t, res.Mastered)
	assert.Equal(t, models.Progress{MasteredCount: 2, Total: 2, Finished: true}, res.Progress)
	deps.states.AssertExpectations(t)
}

func TestAnswer_RetriesOnConflict(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	deps.states.On("GetState", mock.Anything, "p1", "a").Return(&models.PlayerCardState{PlayerID: "p1", CardID: "a", Weight: 1.0}, nil)
	deps.states.On("SaveState", mock.Anything, mock.Anything).Return(models.PlayerCardState{}, repository.ErrConflict).Once()
	deps.states.On("SaveState", mock.Anything, mock.Anything).Return(models.PlayerCardState{PlayerID: "p1", CardID: "a", RefresherCount: 1, Weight: 1.75}, nil).Once()
	deps.states.On("AppendResponse", mock.Anything, mock.Anything).Return(nil).Once()
	deps.states.On("CountMastered", mock.Anything, "p1").Return(0, nil)
	deps.states.On("CountTotal", mock.Anything, "p1").Return(3, nil)

	res, err := svc.Answer(context.Background(), "run-1", "p1", "a", models.LabelRefresher)

	require.NoError(t, err)
	assert.False(t, res.Mastered)
	assert.Equal(t, 3, res.Progress.Total)
	deps.states.AssertNumberOfCalls(t, "GetState", 2)
	deps.states.AssertNumberOfCalls(t, "AppendResponse", 1)
}

func TestAnswer_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	deps.states.On("GetState", mock.Anything, "p1", "a").Return(&models.PlayerCardState{PlayerID: "p1", CardID: "a", Weight: 1.0}, nil)
	deps.states.On("SaveState", mock.Anything, mock.Anything).Return(models.PlayerCardState{}, repository.ErrConflict)

	_, err := svc.Answer(context.Background(), "run-1", "p1", "a", models.LabelKnow)

	assert.ErrorIs(t, err, errors.ErrConflict)
	deps.states.AssertNumberOfCalls(t, "SaveState", 3)
	deps.states.AssertNotCalled(t, "AppendResponse", mock.Anything, mock.Anything)
}

func TestAnswer_StateNotFound(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	expectPlayable(deps)
	deps.states.On("GetState", mock.Anything, "p1", "zzz").Return(nil, nil)

	_, err := svc.Answer(context.Background(), "run-1", "p1", "zzz", models.LabelKnow)

	assert.ErrorIs(t, err, errors.ErrStateNotFound)
	deps.states.AssertNumberOfCalls(t, "GetState", 1)
}

func TestProgress_PlayerNotFound(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	deps.players.On("Get", mock.Anything, "ghost").Return(nil, nil)

	_, err := svc.Progress(context.Background(), "run-1", "ghost")

	assert.ErrorIs(t, err, errors.ErrPlayerNotFound)
}

func TestProgress_WorksAfterRunEnds(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	deps.players.On("Get", mock.Anything, "p1").Return(&models.Player{ID: "p1", RunID: "run-1"}, nil)
	deps.states.On("CountMastered", mock.Anything, "p1").Return(1, nil)
	deps.states.On("CountTotal", mock.Anything, "p1").Return(4, nil)

	progress, err := svc.Progress(context.Background(), "run-1", "p1")

	require.NoError(t, err)
	assert.Equal(t, models.Progress{MasteredCount: 1, Total: 4}, *progress)
	deps.runs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSummary_ListsEveryCard(t *testing.T) {
	svc, deps := newPracticeService(t, 0)
	deps.players.On("Get", mock.Anything, "p1").Return(&models.Player{ID: "p1", RunID: "run-1"}, nil)
	mastered := candidate("a", 0.2)
	mastered.KnowCount = 3
	mastered.Mastered = true
	pending := candidate("b", 1.75)
	pending.RefresherCount = 1
	deps.states.On("ListStates", mock.Anything, "p1").Return([]models.StateWithCard{mastered, pending}, nil)

	summary, err := svc.Summary(context.Background(), "run-1", "p1")

	require.NoError(t, err)
	require.Len(t, summary.Cards, 2)
	assert.Equal(t, "a", summary.Cards[0].ID)
	assert.True(t, summary.Cards[0].Mastered)
	assert.Equal(t, 3, summary.Cards[0].KnowCount)
	assert.Equal(t, 1, summary.Cards[1].RefresherCount)
	assert.False(t, summary.Cards[1].Mastered)
}
