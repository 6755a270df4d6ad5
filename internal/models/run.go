package models

import (
	"fmt"
	"time"
)

type RunStatus string

const (
	RunActive  RunStatus = "ACTIVE"
	RunExpired RunStatus = "EXPIRED"
	RunEnded   RunStatus = "ENDED"
)

// Run is a time-boxed practice session over a fixed snapshot of a deck's cards.
type Run struct {
	ID        string    `json:"id" db:"id"`
	DeckID    string    `json:"deckId" db:"deck_id"`
	Code      string    `json:"code" db:"code"`
	Status    RunStatus `json:"status" db:"status"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	CardIDs   []string  `json:"cardIds,omitempty" db:"-"`
}

// ExpiredAt reports whether the run's deadline has passed at now.
func (r Run) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

type Player struct {
	ID        string    `json:"id" db:"id"`
	RunID     string    `json:"runId" db:"run_id"`
	Nickname  *string   `json:"nickname,omitempty" db:"nickname"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// JoinResult is returned to a student after joining a run by code.
type JoinResult struct {
	RunID    string `json:"runId"`
	PlayerID string `json:"playerId"`
	Deck     struct {
		Title string `json:"title"`
	} `json:"deck"`
}

func (s RunStatus) Valid() bool {
	switch s {
	case RunActive, RunExpired, RunEnded:
		return true
	}
	return false
}

func ParseRunStatus(s string) (RunStatus, error) {
	st := RunStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown run status %q", s)
	}
	return st, nil
}
