package models

import (
	"fmt"
	"strings"
	"time"
)

// Label is a student's self-assessment of a card.
type Label string

const (
	LabelKnow      Label = "KNOW"
	LabelRefresher Label = "REFRESHER"
)

// ParseLabel accepts labels case-insensitively and rejects anything else.
func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToUpper(strings.TrimSpace(s))) {
	case LabelKnow:
		return LabelKnow, nil
	case LabelRefresher:
		return LabelRefresher, nil
	}
	return "", fmt.Errorf("unknown label %q", s)
}

// PlayerCardState is the per (player, card) practice state.
// Mastered is derived from KnowCount and is never set independently.
type PlayerCardState struct {
	PlayerID       string    `json:"playerId" db:"player_id"`
	CardID         string    `json:"cardId" db:"card_id"`
	KnowCount      int       `json:"knowCount" db:"know_count"`
	RefresherCount int       `json:"refresherCount" db:"refresher_count"`
	Weight         float64   `json:"weight" db:"weight"`
	Mastered       bool      `json:"mastered" db:"mastered"`
	Version        int64     `json:"-" db:"version"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// StateWithCard joins a state row with the card content it refers to.
type StateWithCard struct {
	PlayerCardState
	Card CardContent `db:"card"`
}

// Response is an append-only answer log entry.
type Response struct {
	ID        int64     `json:"id" db:"id"`
	PlayerID  string    `json:"playerId" db:"player_id"`
	CardID    string    `json:"cardId" db:"card_id"`
	Label     Label     `json:"label" db:"label"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
