package api

import (
	"context"

	"github.com/vytor/flashrun/internal/services"
)

// HealthChecker reports whether the backing store can serve requests.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	DeckService     services.DeckService
	RunService      services.RunService
	PracticeService services.PracticeService
	Health          HealthChecker
}
