package mastery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashrun/internal/mastery"
	"github.com/vytor/flashrun/internal/models"
)

func fresh() models.PlayerCardState {
	return mastery.NewState("p1", "c1")
}

func TestApplyAnswer_KnowSequenceReachesMastery(t *testing.T) {
	s := fresh()

	s = mastery.ApplyAnswer(s, models.LabelKnow)
	assert.Equal(t, 1, s.KnowCount)
	assert.InDelta(t, 0.5, s.Weight, 1e-9)
	assert.False(t, s.Mastered)

	s = mastery.ApplyAnswer(s, models.LabelKnow)
	assert.Equal(t, 2, s.KnowCount)
	assert.InDelta(t, 0.25, s.Weight, 1e-9)
	assert.False(t, s.Mastered)

	s = mastery.ApplyAnswer(s, models.LabelKnow)
	assert.Equal(t, 3, s.KnowCount)
	assert.Equal(t, 0, s.RefresherCount)
	assert.InDelta(t, 0.2, s.Weight, 1e-9, "weight should be floored")
	assert.True(t, s.Mastered, "third KNOW should master the card")
}

func TestApplyAnswer_RefresherCapsWeight(t *testing.T) {
	s := fresh()

	s = mastery.ApplyAnswer(s, models.LabelRefresher)
	assert.Equal(t, 1, s.RefresherCount)
	assert.InDelta(t, 1.75, s.Weight, 1e-9)
	assert.False(t, s.Mastered)

	for i := 0; i < 6; i++ {
		s = mastery.ApplyAnswer(s, models.LabelRefresher)
	}
	assert.Equal(t, 7, s.RefresherCount)
	assert.Equal(t, mastery.MaxWeight, s.Weight)
	assert.Equal(t, 0, s.KnowCount)
}

func TestApplyAnswer_DoesNotMutateInput(t *testing.T) {
	s := fresh()
	_ = mastery.ApplyAnswer(s, models.LabelKnow)
	assert.Equal(t, 0, s.KnowCount)
	assert.Equal(t, mastery.InitialWeight, s.Weight)
}

func TestApplyAnswer_WeightDirection(t *testing.T) {
	weights := []float64{0.2, 0.21, 0.4, 1.0, 2.5, 4.3, 4.9, 5.0}
	for _, w := range weights {
		s := fresh()
		s.Weight = w

		know := mastery.ApplyAnswer(s, models.LabelKnow)
		if w > mastery.MinWeight {
			assert.Less(t, know.Weight, w, "KNOW should lower weight %.2f", w)
		} else {
			assert.Equal(t, mastery.MinWeight, know.Weight)
		}

		ref := mastery.ApplyAnswer(s, models.LabelRefresher)
		if w < mastery.MaxWeight {
			assert.Greater(t, ref.Weight, w, "REFRESHER should raise weight %.2f", w)
		} else {
			assert.Equal(t, mastery.MaxWeight, ref.Weight)
		}
	}
}

func TestApplyAnswer_BoundsAndMonotonicMastery(t *testing.T) {
	// deterministic pseudo-random label sequences
	seqs := [][]models.Label{}
	for seed := 1; seed <= 50; seed++ {
		var seq []models.Label
		x := seed
		for i := 0; i < 40; i++ {
			x = (x*1103515245 + 12345) & 0x7fffffff
			if x%3 == 0 {
				seq = append(seq, models.LabelKnow)
			} else {
				seq = append(seq, models.LabelRefresher)
			}
		}
		seqs = append(seqs, seq)
	}

	for _, seq := range seqs {
		s := fresh()
		wasMastered := false
		for _, l := range seq {
			s = mastery.ApplyAnswer(s, l)
			assert.GreaterOrEqual(t, s.Weight, mastery.MinWeight)
			assert.LessOrEqual(t, s.Weight, mastery.MaxWeight)
			assert.Equal(t, s.KnowCount >= mastery.Threshold, s.Mastered)
			if wasMastered {
				assert.True(t, s.Mastered, "mastery must not revert")
			}
			wasMastered = s.Mastered
		}
	}
}

func TestApplyAnswer_IdempotentAfterMastery(t *testing.T) {
	s := fresh()
	s.KnowCount = 3
	s.Mastered = true
	s.Weight = mastery.MinWeight

	s = mastery.ApplyAnswer(s, models.LabelKnow)
	assert.True(t, s.Mastered)
	assert.Equal(t, 4, s.KnowCount)
	assert.Equal(t, mastery.MinWeight, s.Weight)

	s = mastery.ApplyAnswer(s, models.LabelRefresher)
	assert.True(t, s.Mastered)
}
