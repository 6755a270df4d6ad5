package models

import "time"

type Deck struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Language    *string   `json:"language,omitempty" db:"language"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Card is read-only content from the engine's point of view.
type Card struct {
	ID        string    `json:"id" db:"id"`
	DeckID    string    `json:"deckId" db:"deck_id"`
	Front     string    `json:"front" db:"front"`
	Back      string    `json:"back" db:"back"`
	ImageURL  *string   `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CardContent is the subset of a card shown to a player.
type CardContent struct {
	ID       string  `json:"id" db:"id"`
	Front    string  `json:"front" db:"front"`
	Back     string  `json:"back" db:"back"`
	ImageURL *string `json:"imageUrl" db:"image_url"`
}
