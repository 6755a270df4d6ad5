package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashrun/internal/models"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Get(ctx context.Context, id string) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) Join(ctx context.Context, player models.Player, states []models.PlayerCardState) error {
	args := m.Called(ctx, player, states)
	return args.Error(0)
}
