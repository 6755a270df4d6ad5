package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrun/internal/models"
	"github.com/vytor/flashrun/internal/selector"
)

type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func candidate(id string, weight float64) models.StateWithCard {
	return models.StateWithCard{
		PlayerCardState: models.PlayerCardState{PlayerID: "p1", CardID: id, Weight: weight},
		Card:            models.CardContent{ID: id, Front: id + "-front", Back: id + "-back"},
	}
}

func ids(cs []models.StateWithCard) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.CardID
	}
	return out
}

func responses(cardIDs ...string) []models.Response {
	out := make([]models.Response, len(cardIDs))
	for i, id := range cardIDs {
		out[i] = models.Response{PlayerID: "p1", CardID: id, Label: models.LabelKnow}
	}
	return out
}

func TestRecentCardIDs_DedupesAndCaps(t *testing.T) {
	recent := selector.RecentCardIDs(responses("A", "A", "B", "A", "C", "D"), selector.RecentWindow)
	assert.Len(t, recent, 3)
	assert.Contains(t, recent, "A")
	assert.Contains(t, recent, "B")
	assert.Contains(t, recent, "C")
	assert.NotContains(t, recent, "D")
}

func TestRecentCardIDs_Empty(t *testing.T) {
	assert.Empty(t, selector.RecentCardIDs(nil, selector.RecentWindow))
}

func TestExcludeRecent_FiltersLastThree(t *testing.T) {
	pool := []models.StateWithCard{
		candidate("A", 1), candidate("B", 1), candidate("C", 1), candidate("D", 1), candidate("E", 1),
	}
	recent := selector.RecentCardIDs(responses("A", "B", "C"), selector.RecentWindow)

	got := selector.ExcludeRecent(pool, recent)
	assert.Equal(t, []string{"D", "E"}, ids(got))
}

func TestExcludeRecent_SmallPoolUntouched(t *testing.T) {
	pool := []models.StateWithCard{candidate("A", 1), candidate("B", 1), candidate("C", 1)}
	recent := selector.RecentCardIDs(responses("A", "B"), selector.RecentWindow)

	got := selector.ExcludeRecent(pool, recent)
	assert.Equal(t, []string{"A", "B", "C"}, ids(got))
}

func TestExcludeRecent_FallsBackWhenEverythingExcluded(t *testing.T) {
	pool := []models.StateWithCard{
		candidate("A", 1), candidate("B", 1), candidate("C", 1), candidate("D", 1),
	}
	// a recent set can only hold three ids, so build one covering all four by hand
	recent := map[string]struct{}{"A": {}, "B": {}, "C": {}, "D": {}}

	got := selector.ExcludeRecent(pool, recent)
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(got))
}

func TestPick_Empty(t *testing.T) {
	_, ok := selector.Pick(nil, &fixedRandom{values: []float64{0.5}})
	assert.False(t, ok)
}

func TestPick_RouletteBoundaries(t *testing.T) {
	pool := []models.StateWithCard{candidate("A", 1), candidate("B", 2), candidate("C", 1)}

	tests := []struct {
		name string
		roll float64
		want string
	}{
		{"zero roll picks first", 0, "A"},
		{"exact boundary stays on first", 0.25, "A"},
		{"just past first", 0.26, "B"},
		{"end of second", 0.75, "B"},
		{"into third", 0.76, "C"},
		{"near one", 0.999999, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := selector.Pick(pool, &fixedRandom{values: []float64{tt.roll}})
			require.True(t, ok)
			assert.Equal(t, tt.want, pool[idx].CardID)
		})
	}
}

func TestPick_FallsBackToLast(t *testing.T) {
	// a roll of exactly 1.0 is outside Float64's range but guards rounding
	pool := []models.StateWithCard{candidate("A", 0.1), candidate("B", 0.2)}
	idx, ok := selector.Pick(pool, &fixedRandom{values: []float64{1.0000001}})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestPick_RespectsWeights(t *testing.T) {
	pool := []models.StateWithCard{candidate("A", 1), candidate("B", 9)}
	rnd := selector.NewRandom(42)

	const trials = 10000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		idx, ok := selector.Pick(pool, rnd)
		require.True(t, ok)
		counts[pool[idx].CardID]++
	}

	assert.InDelta(t, 0.9, float64(counts["B"])/trials, 0.05)
	ratio := float64(counts["B"]) / float64(counts["A"])
	assert.InDelta(t, 9.0, ratio, 9.0*0.25, "B should be drawn about 9x as often as A")
}

func TestPick_NeverPicksRecentWhenAlternativesExist(t *testing.T) {
	pool := []models.StateWithCard{
		candidate("A", 5), candidate("B", 5), candidate("C", 5), candidate("D", 0.2), candidate("E", 0.2),
	}
	recent := selector.RecentCardIDs(responses("A", "B", "C"), selector.RecentWindow)
	rnd := selector.NewRandom(7)

	for i := 0; i < 500; i++ {
		filtered := selector.ExcludeRecent(pool, recent)
		idx, ok := selector.Pick(filtered, rnd)
		require.True(t, ok)
		assert.NotContains(t, recent, filtered[idx].CardID)
	}
}
