package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/flashrun/internal/errors"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/repository"
)

// DeckInput carries the authoring fields of a deck.
type DeckInput struct {
	Title       string
	Description *string
	Language    *string
}

// CardInput carries the authoring fields of a card.
type CardInput struct {
	Front    string
	Back     string
	ImageURL *string
}

// DeckService handles deck authoring and per-deck analytics
type DeckService interface {
	CreateDeck(ctx context.Context, in DeckInput) (*models.Deck, error)
	GetDeck(ctx context.Context, deckID string) (*models.Deck, error)
	AddCard(ctx context.Context, deckID string, in CardInput) (*models.Card, error)
	ListCards(ctx context.Context, deckID string) ([]models.Card, error)
	SetPublished(ctx context.Context, deckID string, published bool) (*models.Deck, error)
	Analytics(ctx context.Context, deckID string) (*models.DeckAnalytics, error)
}

type deckService struct {
	decks repository.DeckRepository
	now   Clock
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, clock Clock) DeckService {
	if clock == nil {
		clock = systemClock
	}
	return &deckService{decks: decks, now: clock}
}

func (s *deckService) CreateDeck(ctx context.Context, in DeckInput) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}

	now := s.now()
	deck := models.Deck{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Language:    in.Language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created deck %s", deck.ID)
	return &deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, deckID string) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	return deck, nil
}

func (s *deckService) AddCard(ctx context.Context, deckID string, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)

	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	front := strings.TrimSpace(in.Front)
	back := strings.TrimSpace(in.Back)
	if front == "" {
		return nil, errors.NewValidationError("front", "cannot be empty")
	}
	if back == "" {
		return nil, errors.NewValidationError("back", "cannot be empty")
	}

	now := s.now()
	card := models.Card{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		Front:     front,
		Back:      back,
		ImageURL:  in.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.decks.AddCard(ctx, card); err != nil {
		log.Error("failed to add card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("added card %s", card.ID)
	return &card, nil
}

func (s *deckService) ListCards(ctx context.Context, deckID string) ([]models.Card, error) {
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.decks.ListCards(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *deckService) SetPublished(ctx context.Context, deckID string, published bool) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)

	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.decks.SetPublished(ctx, deckID, published, now); err != nil {
		log.Error("failed to update publish state: %v", err)
		return nil, errors.NewInternalError(err)
	}
	deck.IsPublished = published
	deck.UpdatedAt = now
	log.Info("deck published=%t", published)
	return deck, nil
}

type cardBucket struct {
	metrics         models.CardMetrics
	masteredKnowSum int
}

func (s *deckService) Analytics(ctx context.Context, deckID string) (*models.DeckAnalytics, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)
	log.Debug("computing deck analytics")

	cards, err := s.ListCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	rows, err := s.decks.ListStates(ctx, deckID)
	if err != nil {
		log.Error("failed to list states: %v", err)
		return nil, errors.NewInternalError(err)
	}

	buckets := make(map[string]*cardBucket, len(cards))
	players := make(map[string]struct{})
	responses := 0
	for _, row := range rows {
		b, ok := buckets[row.CardID]
		if !ok {
			b = &cardBucket{}
			buckets[row.CardID] = b
		}
		b.metrics.TotalKnow += row.KnowCount
		b.metrics.TotalRefresher += row.RefresherCount
		b.metrics.TotalPlayers++
		if row.Mastered {
			b.metrics.MasteredPlayers++
			b.masteredKnowSum += row.KnowCount
		}
		players[row.PlayerID] = struct{}{}
		responses += row.KnowCount + row.RefresherCount
	}

	out := &models.DeckAnalytics{
		Cards:  make([]models.CardAnalytics, 0, len(cards)),
		Totals: models.DeckAnalyticsTotals{Players: len(players), Responses: responses},
	}
	for _, c := range cards {
		entry := models.CardAnalytics{
			Card: models.CardContent{ID: c.ID, Front: c.Front, Back: c.Back, ImageURL: c.ImageURL},
		}
		if b, ok := buckets[c.ID]; ok {
			entry.Metrics = b.metrics
			if b.metrics.MasteredPlayers > 0 {
				avg := roundTo2(float64(b.masteredKnowSum) / float64(b.metrics.MasteredPlayers))
				entry.Metrics.AverageKnowToMastery = &avg
			}
		}
		out.Cards = append(out.Cards, entry)
	}
	return out, nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
