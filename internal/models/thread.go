package models

import "time"

// ThreadStatus is the conversation thread lifecycle state.
type ThreadStatus string

const (
	ThreadActive     ThreadStatus = "active"
	ThreadCompleted  ThreadStatus = "completed"
	ThreadNoResponse ThreadStatus = "no_response"
	ThreadConverted  ThreadStatus = "converted"
)

// Terminal reports whether a thread status permits no further mutation.
func (s ThreadStatus) Terminal() bool {
	return s == ThreadCompleted || s == ThreadNoResponse || s == ThreadConverted
}

// ConversationThread is a persistent multi-turn conversation tied to exactly
// one Lead. Stage only increases, history is append-only and never truncated.
type ConversationThread struct {
	ID              string       `json:"id"`
	LeadID          string       `json:"lead_id"`
	Author          string       `json:"author"`
	OriginalComment string       `json:"original_comment"`
	CommentURL      string       `json:"comment_url"`
	VideoURL        string       `json:"video_url"`
	Stage           int          `json:"conversation_stage"`
	FullHistory     string       `json:"full_history"`
	Status          ThreadStatus `json:"status"`
	PainType        IntentType   `json:"pain_type"`
	ReadinessScore  int          `json:"readiness_score"`
	ResourcesShared []string     `json:"resources_shared"`
	LastReplyDate   *time.Time   `json:"last_reply_date,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewThread opens an active thread for a lead.
func NewThread(lead *Lead) *ConversationThread {
	return &ConversationThread{
		LeadID:          lead.ID,
		Author:          lead.Author,
		OriginalComment: lead.Comment,
		CommentURL:      lead.CommentURL,
		VideoURL:        lead.VideoURL,
		Stage:           0,
		Status:          ThreadActive,
		PainType:        lead.Qualification.IntentType,
		ReadinessScore:  lead.Qualification.ReadinessScore,
		ResourcesShared: []string{},
		CreatedAt:       time.Now(),
	}
}
