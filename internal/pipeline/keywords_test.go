package pipeline

import (
	"testing"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCategories(t *testing.T) {
	d := NewKeywordDetector()

	t.Run("physical pain", func(t *testing.T) {
		s := d.Detect("My back pain keeps me from sitting cross legged")
		assert.True(t, s.HasPhysicalPain)
		assert.False(t, s.HasMentalPain)
		assert.Contains(t, s.KeywordsFound, "back pain")
		assert.Equal(t, 1, s.PreliminaryPainScore)
		assert.Equal(t, models.IntentPhysicalPain, s.PreliminaryIntent)
	})

	t.Run("mental pain", func(t *testing.T) {
		s := d.Detect("dealing with anxiety and overthinking every night")
		assert.True(t, s.HasMentalPain)
		assert.Equal(t, 3, s.PreliminaryPainScore)
		assert.Equal(t, models.IntentMentalPain, s.PreliminaryIntent)
	})

	t.Run("spiritual longing", func(t *testing.T) {
		s := d.Detect("I feel so empty, searching for my life purpose")
		assert.True(t, s.HasSpiritualLonging)
		assert.Equal(t, 4, s.PreliminaryPainScore)
		assert.Equal(t, models.IntentSpiritual, s.PreliminaryIntent)
	})

	t.Run("empty text", func(t *testing.T) {
		s := d.Detect("   ")
		assert.False(t, s.HasPhysicalPain)
		assert.Empty(t, s.KeywordsFound)
		assert.Equal(t, 0, s.PreliminaryPainScore)
		assert.Equal(t, models.IntentLowIntent, s.PreliminaryIntent)
	})
}

func TestDetectScoreIsAdditive(t *testing.T) {
	d := NewKeywordDetector()

	// spiritual(4) + mental(3) + discipline(2) + physical(1) = 10
	s := d.Detect("anxiety and back pain, lost motivation, searching for inner peace")
	assert.True(t, s.HasSpiritualLonging)
	assert.True(t, s.HasMentalPain)
	assert.True(t, s.HasDisciplineIssue)
	assert.True(t, s.HasPhysicalPain)
	assert.Equal(t, 10, s.PreliminaryPainScore)
}

func TestDetectScoreCountsPresenceNotOccurrences(t *testing.T) {
	d := NewKeywordDetector()

	one := d.Detect("so much anxiety lately")
	many := d.Detect("anxiety anxiety anxiety and more stress and worry and fear")
	assert.Equal(t, one.PreliminaryPainScore, many.PreliminaryPainScore)
}

func TestDetectIntentTieBreak(t *testing.T) {
	d := NewKeywordDetector()

	t.Run("practice plus pain wins", func(t *testing.T) {
		s := d.Detect("I do shambhavi daily but anxiety still comes back")
		assert.Equal(t, models.IntentPracticeAligned, s.PreliminaryIntent)
	})

	t.Run("practice with only physical pain does not", func(t *testing.T) {
		s := d.Detect("started hatha yoga for my knee pain")
		assert.Equal(t, models.IntentPhysicalPain, s.PreliminaryIntent)
	})

	t.Run("spiritual outranks mental", func(t *testing.T) {
		s := d.Detect("anxiety has me searching for inner peace and meaning")
		assert.Equal(t, models.IntentSpiritual, s.PreliminaryIntent)
	})

	t.Run("mental outranks discipline", func(t *testing.T) {
		s := d.Detect("stress made me quit my daily routine")
		assert.Equal(t, models.IntentMentalPain, s.PreliminaryIntent)
	})
}

func TestDetectLongestPhraseWins(t *testing.T) {
	d := NewKeywordDetector()

	s := d.Detect("so much stiffness in my lower back every morning")
	assert.Contains(t, s.KeywordsFound, "stiffness")
	// The masked region must not re-match the bare substring.
	assert.NotContains(t, s.KeywordsFound, "stiff")
}

func TestDetectMisspelledPractices(t *testing.T) {
	d := NewKeywordDetector()

	s := d.Detect("I learned sambhavi last year but feel restless again")
	require.NotEmpty(t, s.PracticeMentions)
	assert.Contains(t, s.PracticeMentions, "sambhavi")
	assert.Equal(t, models.IntentPracticeAligned, s.PreliminaryIntent)
}

func TestDetectBatchAnnotates(t *testing.T) {
	d := NewKeywordDetector()

	comments := []*models.Comment{
		{Text: "anxiety is ruining my life"},
		{Text: "nice weather today"},
	}
	d.DetectBatch(comments)

	require.NotNil(t, comments[0].Signals)
	require.NotNil(t, comments[1].Signals)
	assert.True(t, comments[0].Signals.HasMentalPain)
	assert.False(t, comments[1].Signals.HasMentalPain)
}
