package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/becaslatam/becas-api/internal/models"
)

// InstitutionRepository handles persistence of platform tenants.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs the repository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// FindBySlug returns the institution addressed by slug.
func (r *InstitutionRepository) FindBySlug(ctx context.Context, slug string) (*models.Institution, error) {
	const query = `SELECT id, slug, nombre, created_at FROM instituciones WHERE slug = $1`
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, slug); err != nil {
		return nil, err
	}
	return &institution, nil
}

// List returns all institutions ordered by name.
func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	const query = `SELECT id, slug, nombre, created_at FROM instituciones ORDER BY nombre ASC`
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return institutions, nil
}

// Create persists a new institution.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = uuid.NewString()
	}
	if institution.CreatedAt.IsZero() {
		institution.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instituciones (id, slug, nombre, created_at)
        VALUES (:id, :slug, :nombre, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, institution); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}
