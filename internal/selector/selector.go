// Package selector chooses the next card a player should see.
//
// Selection has two steps: cards answered in the last few turns are set
// aside so they do not repeat immediately, then a card is drawn from what
// is left with probability proportional to its weight.
package selector

import (
	"math/rand/v2"
	"sync"

	"github.com/vytor/flashrun/internal/models"
)

const (
	// RecentWindow is how many distinct recently answered cards are excluded.
	RecentWindow = 3
	// MinPoolForExclusion is the candidate count above which exclusion applies.
	MinPoolForExclusion = 3
)

// Random supplies uniform floats in [0, 1).
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom uses the process-wide generator, which is safe for concurrent use.
func DefaultRandom() Random { return globalRandom{} }

// NewRandom returns a seeded generator. It is not safe for concurrent use.
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RecentCardIDs reduces most-recent-first responses to at most window distinct card ids.
func RecentCardIDs(responses []models.Response, window int) map[string]struct{} {
	recent := make(map[string]struct{}, window)
	for _, r := range responses {
		if len(recent) >= window {
			break
		}
		recent[r.CardID] = struct{}{}
	}
	return recent
}

// ExcludeRecent drops candidates answered recently. The filter only applies
// to pools larger than MinPoolForExclusion and never empties the pool.
func ExcludeRecent(candidates []models.StateWithCard, recent map[string]struct{}) []models.StateWithCard {
	if len(candidates) <= MinPoolForExclusion || len(recent) == 0 {
		return candidates
	}
	filtered := make([]models.StateWithCard, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := recent[c.CardID]; skip {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// Pick performs roulette-wheel selection over candidates in their given order.
// ok is false only when candidates is empty.
func Pick(candidates []models.StateWithCard, rnd Random) (idx int, ok bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	total := 0.0
	for _, c := range candidates {
		total += c.Weight
	}
	roll := rnd.Float64() * total
	for i, c := range candidates {
		roll -= c.Weight
		if roll <= 0 {
			return i, true
		}
	}
	// float rounding can leave roll marginally positive
	return len(candidates) - 1, true
}

type lockedRandom struct {
	mu sync.Mutex
	r  Random
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Locked makes r safe to share between concurrent requests.
func Locked(r Random) Random {
	if _, ok := r.(globalRandom); ok {
		return r
	}
	return &lockedRandom{r: r}
}
