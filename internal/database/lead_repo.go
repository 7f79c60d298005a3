package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sadhaka-labs/leadstream/internal/models"
)

type LeadRepository struct {
	db *DB
}

func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead. Leads are append-only; there is no update path.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.ScrapedDate.IsZero() {
		lead.ScrapedDate = time.Now()
	}

	query := `
		INSERT INTO leads (id, author, platform, comment, video_url, comment_url,
		                   intent_type, pain_intensity, readiness_score, practice_mention,
		                   confidence, reasoning, lead_hash, scraped_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		lead.ID,
		lead.Author,
		lead.Platform,
		lead.Comment,
		lead.VideoURL,
		lead.CommentURL,
		string(lead.Qualification.IntentType),
		lead.Qualification.PainIntensity,
		lead.Qualification.ReadinessScore,
		lead.Qualification.PracticeMention,
		lead.Qualification.Confidence,
		lead.Qualification.Reasoning,
		lead.LeadHash,
		lead.ScrapedDate,
	)

	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// BatchCreate inserts leads one by one, collecting failures instead of
// aborting the batch. Already-persisted rows stay intact; the caller decides
// what to do with the failed remainder (typically the local fallback file).
func (r *LeadRepository) BatchCreate(ctx context.Context, leads []*models.Lead) (created, failed []*models.Lead) {
	for _, lead := range leads {
		if err := r.Create(ctx, lead); err != nil {
			log.Printf("Failed to store lead from %s: %v", lead.Author, err)
			failed = append(failed, lead)
			continue
		}
		created = append(created, lead)
	}

	log.Printf("Stored %d/%d leads", len(created), len(leads))
	return created, failed
}

// LeadExists reports whether a lead with the given content hash is already
// stored.
func (r *LeadRepository) LeadExists(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE lead_hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lead hash: %w", err)
	}
	return exists, nil
}

// GetByID retrieves a lead by its ID.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `
		SELECT id, author, platform, comment, video_url, comment_url,
		       intent_type, pain_intensity, readiness_score, practice_mention,
		       confidence, reasoning, lead_hash, scraped_date
		FROM leads
		WHERE id = $1
	`

	lead, err := scanLead(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("lead not found: %w", err)
	}
	return lead, nil
}

// GetRecent retrieves leads scraped within the given window, newest first.
func (r *LeadRepository) GetRecent(ctx context.Context, since time.Duration) ([]*models.Lead, error) {
	query := `
		SELECT id, author, platform, comment, video_url, comment_url,
		       intent_type, pain_intensity, readiness_score, practice_mention,
		       confidence, reasoning, lead_hash, scraped_date
		FROM leads
		WHERE scraped_date >= $1
		ORDER BY scraped_date DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, time.Now().Add(-since))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	var intentType string
	var practiceMention, reasoning *string

	err := row.Scan(
		&lead.ID,
		&lead.Author,
		&lead.Platform,
		&lead.Comment,
		&lead.VideoURL,
		&lead.CommentURL,
		&intentType,
		&lead.Qualification.PainIntensity,
		&lead.Qualification.ReadinessScore,
		&practiceMention,
		&lead.Qualification.Confidence,
		&reasoning,
		&lead.LeadHash,
		&lead.ScrapedDate,
	)
	if err != nil {
		return nil, err
	}

	lead.Qualification.IntentType, _ = models.ParseIntentType(intentType)
	if practiceMention != nil {
		lead.Qualification.PracticeMention = *practiceMention
	}
	if reasoning != nil {
		lead.Qualification.Reasoning = *reasoning
	}
	return lead, nil
}
