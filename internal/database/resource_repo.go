package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sadhaka-labs/leadstream/internal/models"
)

type ResourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a resource into the catalog.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}

	painTypes := make([]string, len(resource.PainTypes))
	for i, pt := range resource.PainTypes {
		painTypes[i] = string(pt)
	}

	query := `
		INSERT INTO resources (id, name, link, description, pain_types, min_readiness, active, times_shared)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		resource.ID,
		resource.Name,
		resource.Link,
		resource.Description,
		painTypes,
		resource.MinReadiness,
		resource.Active,
		resource.TimesShared,
	)

	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

// GetResourceByName looks up an active resource by exact name. Returns nil
// when no active resource matches.
func (r *ResourceRepository) GetResourceByName(ctx context.Context, name string) (*models.Resource, error) {
	query := `
		SELECT id, name, link, description, pain_types, min_readiness, active, times_shared
		FROM resources
		WHERE name = $1 AND active = TRUE
	`

	resource, err := scanResource(r.db.Pool.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}
	return resource, nil
}

// List retrieves all resources, active first.
func (r *ResourceRepository) List(ctx context.Context) ([]*models.Resource, error) {
	query := `
		SELECT id, name, link, description, pain_types, min_readiness, active, times_shared
		FROM resources
		ORDER BY active DESC, name ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, resource)
	}

	return resources, rows.Err()
}

// IncrementTimesShared bumps the share counter after a resource goes out in
// a posted reply.
func (r *ResourceRepository) IncrementTimesShared(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE resources SET times_shared = times_shared + 1 WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to increment share count: %w", err)
	}
	return nil
}

func scanResource(row rowScanner) (*models.Resource, error) {
	resource := &models.Resource{}
	var painTypes []string

	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Link,
		&resource.Description,
		&painTypes,
		&resource.MinReadiness,
		&resource.Active,
		&resource.TimesShared,
	)
	if err != nil {
		return nil, err
	}

	resource.PainTypes = make([]models.IntentType, 0, len(painTypes))
	for _, pt := range painTypes {
		if intent, ok := models.ParseIntentType(pt); ok {
			resource.PainTypes = append(resource.PainTypes, intent)
		}
	}
	return resource, nil
}
