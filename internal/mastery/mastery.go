package mastery

import (
	"math"

	"github.com/vytor/flashrun/internal/models"
)

const (
	// Threshold is the number of KNOW answers that retires a card.
	Threshold = 3

	InitialWeight = 1.0
	MinWeight     = 0.2
	MaxWeight     = 5.0

	knowFactor         = 0.5
	refresherIncrement = 0.75
)

// ApplyAnswer returns the state that results from answering a card with label.
// It has no side effects; persisting the state and logging the response is up
// to the caller. Labels must already be validated with models.ParseLabel.
func ApplyAnswer(state models.PlayerCardState, label models.Label) models.PlayerCardState {
	switch label {
	case models.LabelKnow:
		state.KnowCount++
		state.Weight = math.Max(MinWeight, state.Weight*knowFactor)
	default:
		state.RefresherCount++
		state.Weight = math.Min(MaxWeight, state.Weight+refresherIncrement)
	}
	state.Mastered = IsMastered(state.KnowCount)
	return state
}

func IsMastered(knowCount int) bool {
	return knowCount >= Threshold
}

// NewState is the initial state seeded for each snapshot card when a player joins.
func NewState(playerID, cardID string) models.PlayerCardState {
	return models.PlayerCardState{
		PlayerID: playerID,
		CardID:   cardID,
		Weight:   InitialWeight,
	}
}
