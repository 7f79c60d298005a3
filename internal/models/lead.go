package models

import "time"

// IntentType classifies the primary pain signal behind a comment.
type IntentType string

const (
	IntentPhysicalPain    IntentType = "physical_pain"
	IntentMentalPain      IntentType = "mental_pain"
	IntentDiscipline      IntentType = "discipline"
	IntentSpiritual       IntentType = "spiritual"
	IntentPracticeAligned IntentType = "practice_aligned"
	IntentLowIntent       IntentType = "low_intent"
)

// ParseIntentType validates a classifier-supplied intent string.
func ParseIntentType(s string) (IntentType, bool) {
	switch IntentType(s) {
	case IntentPhysicalPain, IntentMentalPain, IntentDiscipline,
		IntentSpiritual, IntentPracticeAligned, IntentLowIntent:
		return IntentType(s), true
	}
	return IntentLowIntent, false
}

// IntentTier is the legacy three-tier intent view. It is derived, never
// stored independently.
type IntentTier string

const (
	TierHigh   IntentTier = "High"
	TierMedium IntentTier = "Medium"
	TierLow    IntentTier = "Low"
)

// Qualification is the classifier's canonical judgment for one comment.
// All numeric fields are clamped to their declared ranges before a
// Qualification is accepted.
type Qualification struct {
	IntentType      IntentType `json:"intent_type"`
	PainIntensity   int        `json:"pain_intensity"`  // 0-10
	ReadinessScore  int        `json:"readiness_score"` // 0-100
	PracticeMention string     `json:"practice_mention,omitempty"`
	Confidence      int        `json:"confidence"` // 0-100
	Reasoning       string     `json:"reasoning"`
}

// Tier derives the legacy High/Medium/Low view:
// practice_aligned or (spiritual and readiness >= 70) is High; spiritual,
// mental_pain, discipline or readiness >= 50 is Medium; everything else Low.
func (q Qualification) Tier() IntentTier {
	if q.IntentType == IntentPracticeAligned ||
		(q.IntentType == IntentSpiritual && q.ReadinessScore >= 70) {
		return TierHigh
	}
	switch q.IntentType {
	case IntentSpiritual, IntentMentalPain, IntentDiscipline:
		return TierMedium
	}
	if q.ReadinessScore >= 50 {
		return TierMedium
	}
	return TierLow
}

// Lead is a qualified comment persisted to the store. Leads are append-only:
// created exactly once per unique (author, platform, text) triple, never
// mutated afterwards.
type Lead struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	Platform      string        `json:"platform"`
	Comment       string        `json:"comment"`
	VideoURL      string        `json:"video_url"`
	CommentURL    string        `json:"comment_url"`
	Qualification Qualification `json:"qualification"`
	LeadHash      string        `json:"lead_hash"`
	ScrapedDate   time.Time     `json:"scraped_date"`
}

// NewLead builds a Lead from a fully annotated comment.
func NewLead(c *Comment) *Lead {
	q := Qualification{IntentType: IntentLowIntent}
	if c.Qualification != nil {
		q = *c.Qualification
	}
	return &Lead{
		Author:        c.Author,
		Platform:      c.Platform,
		Comment:       c.Text,
		VideoURL:      c.VideoURL,
		CommentURL:    c.CommentURL,
		Qualification: q,
		LeadHash:      c.Hash,
		ScrapedDate:   time.Now(),
	}
}
