package models

import "time"

// ApprovalStatus tracks a drafted reply through the human approval gate.
// Transitions: pending -> approved -> posted, or pending -> rejected.
type ApprovalStatus string

const (
	ReplyPending  ApprovalStatus = "pending"
	ReplyApproved ApprovalStatus = "approved"
	ReplyRejected ApprovalStatus = "rejected"
	ReplyPosted   ApprovalStatus = "posted"
)

// Terminal reports whether a reply needs no further decision.
func (s ApprovalStatus) Terminal() bool {
	return s == ReplyRejected || s == ReplyPosted
}

// PendingReply is an AI-drafted reply awaiting a human decision. At most one
// non-terminal PendingReply may exist per thread.
type PendingReply struct {
	ID                string         `json:"id"`
	ThreadID          string         `json:"thread_id"`
	TheirLastMessage  string         `json:"their_last_message"`
	DraftText         string         `json:"draft_text"`
	Status            ApprovalStatus `json:"approval_status"`
	Responder         string         `json:"responder"`
	SuggestedResource string         `json:"suggested_resource,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	GeneratedAt       time.Time      `json:"generated_at"`
	DecidedAt         *time.Time     `json:"decided_at,omitempty"`
	PostedAt          *time.Time     `json:"posted_at,omitempty"`
}

// NewPendingReply drafts a reply for approval.
func NewPendingReply(threadID, theirMessage, draft, responder string) *PendingReply {
	return &PendingReply{
		ThreadID:         threadID,
		TheirLastMessage: theirMessage,
		DraftText:        draft,
		Status:           ReplyPending,
		Responder:        responder,
		GeneratedAt:      time.Now(),
	}
}
