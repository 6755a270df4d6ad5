package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

// MockStateStore is a mock implementation of repository.StateStore.
// InTx records the call and then runs fn against the mock itself.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) GetState(ctx context.Context, playerID, cardID string) (*models.PlayerCardState, error) {
	args := m.Called(ctx, playerID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerCardState), args.Error(1)
}

func (m *MockStateStore) ListUnmastered(ctx context.Context, playerID string) ([]models.StateWithCard, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StateWithCard), args.Error(1)
}

func (m *MockStateStore) ListStates(ctx context.Context, playerID string) ([]models.StateWithCard, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StateWithCard), args.Error(1)
}

func (m *MockStateStore) SaveState(ctx context.Context, state models.PlayerCardState) (models.PlayerCardState, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(models.PlayerCardState), args.Error(1)
}

func (m *MockStateStore) AppendResponse(ctx context.Context, resp models.Response) error {
	args := m.Called(ctx, resp)
	return args.Error(0)
}

func (m *MockStateStore) RecentResponses(ctx context.Context, playerID string, limit int) ([]models.Response, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Response), args.Error(1)
}

func (m *MockStateStore) CountMastered(ctx context.Context, playerID string) (int, error) {
	args := m.Called(ctx, playerID)
	return args.Int(0), args.Error(1)
}

func (m *MockStateStore) CountTotal(ctx context.Context, playerID string) (int, error) {
	args := m.Called(ctx, playerID)
	return args.Int(0), args.Error(1)
}

func (m *MockStateStore) InTx(ctx context.Context, fn func(repository.StateStore) error) error {
	return fn(m)
}
