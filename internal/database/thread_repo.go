package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sadhaka-labs/leadstream/internal/models"
)

type ThreadRepository struct {
	db *DB
}

func NewThreadRepository(db *DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

const threadColumns = `id, lead_id, author, original_comment, comment_url, video_url,
	conversation_stage, full_history, status, pain_type, readiness_score,
	resources_shared, last_reply_date, created_at`

// Create inserts a new conversation thread. The lead_id unique constraint
// enforces at most one thread per lead.
func (r *ThreadRepository) Create(ctx context.Context, thread *models.ConversationThread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO conversation_threads (id, lead_id, author, original_comment,
		        comment_url, video_url, conversation_stage, full_history, status,
		        pain_type, readiness_score, resources_shared, last_reply_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		thread.ID,
		thread.LeadID,
		thread.Author,
		thread.OriginalComment,
		thread.CommentURL,
		thread.VideoURL,
		thread.Stage,
		thread.FullHistory,
		string(thread.Status),
		string(thread.PainType),
		thread.ReadinessScore,
		thread.ResourcesShared,
		thread.LastReplyDate,
		thread.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	return nil
}

// GetByID retrieves a thread by its ID.
func (r *ThreadRepository) GetByID(ctx context.Context, id string) (*models.ConversationThread, error) {
	query := `SELECT ` + threadColumns + ` FROM conversation_threads WHERE id = $1`
	thread, err := scanThread(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("thread not found: %w", err)
	}
	return thread, nil
}

// GetByLeadID retrieves the thread for a lead, or nil when none exists.
func (r *ThreadRepository) GetByLeadID(ctx context.Context, leadID string) (*models.ConversationThread, error) {
	query := `SELECT ` + threadColumns + ` FROM conversation_threads WHERE lead_id = $1`
	thread, err := scanThread(r.db.Pool.QueryRow(ctx, query, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query thread by lead: %w", err)
	}
	return thread, nil
}

// GetActive retrieves all active threads, oldest first.
func (r *ThreadRepository) GetActive(ctx context.Context) ([]*models.ConversationThread, error) {
	query := `SELECT ` + threadColumns + ` FROM conversation_threads
		WHERE status = 'active' ORDER BY created_at ASC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.ConversationThread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, thread)
	}

	return threads, rows.Err()
}

// Update persists the mutable thread fields. Updates are last-write-wins.
func (r *ThreadRepository) Update(ctx context.Context, thread *models.ConversationThread) error {
	query := `
		UPDATE conversation_threads
		SET conversation_stage = $2, full_history = $3, status = $4,
		    readiness_score = $5, resources_shared = $6, last_reply_date = $7
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query,
		thread.ID,
		thread.Stage,
		thread.FullHistory,
		string(thread.Status),
		thread.ReadinessScore,
		thread.ResourcesShared,
		thread.LastReplyDate,
	)

	if err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("thread not found")
	}

	return nil
}

func scanThread(row rowScanner) (*models.ConversationThread, error) {
	thread := &models.ConversationThread{}
	var status, painType string

	err := row.Scan(
		&thread.ID,
		&thread.LeadID,
		&thread.Author,
		&thread.OriginalComment,
		&thread.CommentURL,
		&thread.VideoURL,
		&thread.Stage,
		&thread.FullHistory,
		&status,
		&painType,
		&thread.ReadinessScore,
		&thread.ResourcesShared,
		&thread.LastReplyDate,
		&thread.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	thread.Status = models.ThreadStatus(status)
	thread.PainType, _ = models.ParseIntentType(painType)
	return thread, nil
}
