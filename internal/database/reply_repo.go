package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadhaka-labs/leadstream/internal/models"
)

type ReplyRepository struct {
	db *DB
}

func NewReplyRepository(db *DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

const replyColumns = `id, thread_id, their_last_message, draft_text, status,
	responder, suggested_resource, notes, generated_at, decided_at, posted_at`

// Create inserts a new pending reply. The partial unique index on thread_id
// rejects a second open reply for the same thread.
func (r *ReplyRepository) Create(ctx context.Context, reply *models.PendingReply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	if reply.GeneratedAt.IsZero() {
		reply.GeneratedAt = time.Now()
	}

	query := `
		INSERT INTO pending_replies (id, thread_id, their_last_message, draft_text,
		        status, responder, suggested_resource, notes, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		reply.ID,
		reply.ThreadID,
		reply.TheirLastMessage,
		reply.DraftText,
		string(reply.Status),
		reply.Responder,
		reply.SuggestedResource,
		reply.Notes,
		reply.GeneratedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create pending reply: %w", err)
	}

	return nil
}

// GetByID retrieves a pending reply by its ID.
func (r *ReplyRepository) GetByID(ctx context.Context, id string) (*models.PendingReply, error) {
	query := `SELECT ` + replyColumns + ` FROM pending_replies WHERE id = $1`
	reply, err := scanReply(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("reply not found: %w", err)
	}
	return reply, nil
}

// GetByStatus retrieves replies in the given status, oldest first.
func (r *ReplyRepository) GetByStatus(ctx context.Context, status models.ApprovalStatus) ([]*models.PendingReply, error) {
	query := `SELECT ` + replyColumns + ` FROM pending_replies
		WHERE status = $1 ORDER BY generated_at ASC`

	rows, err := r.db.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []*models.PendingReply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, reply)
	}

	return replies, rows.Err()
}

// Update persists the reviewer-facing fields of a reply.
func (r *ReplyRepository) Update(ctx context.Context, reply *models.PendingReply) error {
	query := `
		UPDATE pending_replies
		SET draft_text = $2, status = $3, notes = $4, decided_at = $5
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query,
		reply.ID,
		reply.DraftText,
		string(reply.Status),
		reply.Notes,
		reply.DecidedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update reply: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reply not found")
	}

	return nil
}

// MarkPosted transitions a reply from approved to posted. The status
// precondition in the WHERE clause makes the transition safe under
// concurrent posters: only one caller wins, the rest get an error.
func (r *ReplyRepository) MarkPosted(ctx context.Context, id string, postedAt time.Time) error {
	query := `
		UPDATE pending_replies
		SET status = 'posted', posted_at = $2
		WHERE id = $1 AND status = 'approved'
	`

	result, err := r.db.Pool.Exec(ctx, query, id, postedAt)
	if err != nil {
		return fmt.Errorf("failed to mark reply posted: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reply %s is not in approved status", id)
	}

	return nil
}

func scanReply(row rowScanner) (*models.PendingReply, error) {
	reply := &models.PendingReply{}
	var status string

	err := row.Scan(
		&reply.ID,
		&reply.ThreadID,
		&reply.TheirLastMessage,
		&reply.DraftText,
		&status,
		&reply.Responder,
		&reply.SuggestedResource,
		&reply.Notes,
		&reply.GeneratedAt,
		&reply.DecidedAt,
		&reply.PostedAt,
	)
	if err != nil {
		return nil, err
	}

	reply.Status = models.ApprovalStatus(status)
	return reply, nil
}
