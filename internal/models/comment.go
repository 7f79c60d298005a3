package models

import "time"

// Comment is the ephemeral input unit of the pipeline. It is annotated in
// place as it passes each stage and ends up either discarded or persisted
// as a Lead.
type Comment struct {
	Author      string    `json:"author"`
	Platform    string    `json:"platform"`
	Text        string    `json:"text"`
	VideoTitle  string    `json:"video_title,omitempty"`
	VideoURL    string    `json:"video_url"`
	CommentURL  string    `json:"comment_url"`
	PublishedAt time.Time `json:"published_at"`
	LikeCount   int       `json:"like_count,omitempty"`

	// Stage annotations
	Language        string          `json:"language,omitempty"`
	PrefilterStatus string          `json:"prefilter_status,omitempty"`
	Signals         *KeywordSignals `json:"keyword_signals,omitempty"`
	Hash            string          `json:"hash,omitempty"`
	Qualification   *Qualification  `json:"qualification,omitempty"`
}

// KeywordSignals is the keyword detector's advisory output. It is context for
// the AI classifier, never a substitute for it.
type KeywordSignals struct {
	HasPhysicalPain      bool       `json:"has_physical_pain"`
	HasMentalPain        bool       `json:"has_mental_pain"`
	HasDisciplineIssue   bool       `json:"has_discipline_issue"`
	HasSpiritualLonging  bool       `json:"has_spiritual_longing"`
	PracticeMentions     []string   `json:"practice_mentions"`
	KeywordsFound        []string   `json:"keywords_found"`
	PreliminaryPainScore int        `json:"preliminary_pain_score"`
	PreliminaryIntent    IntentType `json:"preliminary_intent"`
}
