package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

type institutionStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Institution, error)
	List(ctx context.Context) ([]models.Institution, error)
	Create(ctx context.Context, institution *models.Institution) error
}

// InstitutionService manages the platform's tenants.
type InstitutionService struct {
	institutions institutionStore
	logger       *zap.Logger
}

// NewInstitutionService constructs InstitutionService.
func NewInstitutionService(institutions institutionStore, logger *zap.Logger) *InstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstitutionService{institutions: institutions, logger: logger}
}

// List returns every institution.
func (s *InstitutionService) List(ctx context.Context) ([]models.Institution, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	return institutions, nil
}

// Get returns the institution addressed by slug.
func (s *InstitutionService) Get(ctx context.Context, slug string) (*models.Institution, error) {
	institution, err := s.institutions.FindBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return institution, nil
}

// Create registers a new tenant. Slugs are unique.
func (s *InstitutionService) Create(ctx context.Context, req dto.CreateInstitutionRequest) (*models.Institution, error) {
	if existing, err := s.institutions.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "institution slug already registered")
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check institution slug")
	}

	institution := &models.Institution{Slug: req.Slug, Nombre: req.Nombre}
	if err := s.institutions.Create(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create institution")
	}
	s.logger.Info("institution registered", zap.String("slug", institution.Slug))
	return institution, nil
}
