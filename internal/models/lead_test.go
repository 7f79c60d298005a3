package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntentType(t *testing.T) {
	for _, valid := range []string{
		"physical_pain", "mental_pain", "discipline",
		"spiritual", "practice_aligned", "low_intent",
	} {
		intent, ok := ParseIntentType(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, IntentType(valid), intent)
	}

	intent, ok := ParseIntentType("bogus")
	assert.False(t, ok)
	assert.Equal(t, IntentLowIntent, intent)

	_, ok = ParseIntentType("")
	assert.False(t, ok)
}

func TestQualificationTier(t *testing.T) {
	tests := []struct {
		name string
		q    Qualification
		want IntentTier
	}{
		{"practice aligned is high", Qualification{IntentType: IntentPracticeAligned}, TierHigh},
		{"ready spiritual is high", Qualification{IntentType: IntentSpiritual, ReadinessScore: 70}, TierHigh},
		{"unready spiritual is medium", Qualification{IntentType: IntentSpiritual, ReadinessScore: 69}, TierMedium},
		{"mental pain is medium", Qualification{IntentType: IntentMentalPain}, TierMedium},
		{"discipline is medium", Qualification{IntentType: IntentDiscipline}, TierMedium},
		{"ready physical is medium", Qualification{IntentType: IntentPhysicalPain, ReadinessScore: 50}, TierMedium},
		{"unready physical is low", Qualification{IntentType: IntentPhysicalPain, ReadinessScore: 49}, TierLow},
		{"low intent is low", Qualification{IntentType: IntentLowIntent, ReadinessScore: 49}, TierLow},
		{"ready low intent is medium", Qualification{IntentType: IntentLowIntent, ReadinessScore: 50}, TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Tier())
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, ThreadActive.Terminal())
	assert.True(t, ThreadCompleted.Terminal())
	assert.True(t, ThreadNoResponse.Terminal())
	assert.True(t, ThreadConverted.Terminal())

	assert.False(t, ReplyPending.Terminal())
	assert.False(t, ReplyApproved.Terminal())
	assert.True(t, ReplyRejected.Terminal())
	assert.True(t, ReplyPosted.Terminal())
}

func TestNewLeadDefaultsMissingQualification(t *testing.T) {
	lead := NewLead(&Comment{Author: "a", Platform: "youtube", Text: "hi", Hash: "h"})
	assert.Equal(t, IntentLowIntent, lead.Qualification.IntentType)
	assert.Equal(t, "h", lead.LeadHash)
}
