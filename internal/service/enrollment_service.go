package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

type admissionCoordinator interface {
	Exists(ctx context.Context, key models.EnrollmentKey) (bool, error)
	ExistsDurable(ctx context.Context, key models.EnrollmentKey) (bool, error)
	Reserve(ctx context.Context, key models.EnrollmentKey, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key models.EnrollmentKey)
	Confirm(ctx context.Context, key models.EnrollmentKey) error
	Status(ctx context.Context, key models.EnrollmentKey) (models.AvailabilityStatus, error)
	CarrerasFor(ctx context.Context, dni, institucionSlug string) ([]string, error)
	Ping(ctx context.Context) error
}

type applicantWriter interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	StatsByInstitution(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error)
}

type institutionReader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Institution, error)
	List(ctx context.Context) ([]models.Institution, error)
}

type subscriptionStore interface {
	Create(ctx context.Context, sub *models.EmailSubscription) error
	FindByEmail(ctx context.Context, email string) (*models.EmailSubscription, error)
	MarkConverted(ctx context.Context, email string) error
}

type enrollmentEvents interface {
	ApplicantEnrolled(ctx context.Context, applicant *models.Applicant, institucionNombre string)
}

// EnrollmentService orchestrates the admission workflow: at most one committed
// record per (dni, carrera, institución), enforced through the coordinator.
type EnrollmentService struct {
	coordinator    admissionCoordinator
	applicants     applicantWriter
	institutions   institutionReader
	subscriptions  subscriptionStore
	events         enrollmentEvents
	reservationTTL time.Duration
	logger         *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(coord admissionCoordinator, applicants applicantWriter, institutions institutionReader,
	subscriptions subscriptionStore, events enrollmentEvents, reservationTTL time.Duration, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		coordinator:    coord,
		applicants:     applicants,
		institutions:   institutions,
		subscriptions:  subscriptions,
		events:         events,
		reservationTTL: reservationTTL,
		logger:         logger,
	}
}

// Check classifies an enrollment key and lists the carreras the DNI already
// holds at the institution, so the frontend can steer the applicant.
func (s *EnrollmentService) Check(ctx context.Context, dni, carrera, institucionSlug string) (*dto.CheckEnrollmentResponse, error) {
	if dni == "" || carrera == "" || institucionSlug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dni, carrera_interes and institucion_slug are required")
	}
	key := models.EnrollmentKey{DNI: dni, Carrera: carrera, InstitucionSlug: institucionSlug}

	status, err := s.coordinator.Status(ctx, key)
	if err != nil {
		return nil, err
	}
	carreras, err := s.coordinator.CarrerasFor(ctx, dni, institucionSlug)
	if err != nil {
		return nil, err
	}

	resp := &dto.CheckEnrollmentResponse{
		Status:           status,
		ExistingCarreras: carreras,
	}
	switch status {
	case models.AvailabilityEnrolled:
		resp.Message = fmt.Sprintf("already enrolled in %s at this institution", carrera)
	case models.AvailabilityReserved:
		resp.Message = "an enrollment for this carrera is currently being processed"
	default:
		resp.Available = true
		resp.Message = "carrera available for enrollment"
	}
	return resp, nil
}

// Submit runs the admission workflow. Under N concurrent submissions for the
// same key exactly one reaches the persist step; the rest get a conflict.
func (s *EnrollmentService) Submit(ctx context.Context, req dto.SubmitEnrollmentRequest) (*models.Applicant, error) {
	institution, err := s.institutions.FindBySlug(ctx, req.InstitucionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}

	key := models.EnrollmentKey{DNI: req.DNI, Carrera: req.CarreraInteres, InstitucionSlug: req.InstitucionSlug}

	exists, err := s.coordinator.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		// A cold cache answers no for committed records too, so the
		// durable store gets the authoritative word.
		exists, err = s.coordinator.ExistsDurable(ctx, key)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("already enrolled in %s at this institution", req.CarreraInteres))
	}

	won, err := s.coordinator.Reserve(ctx, key, s.reservationTTL)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			"an enrollment for this carrera is currently being processed")
	}

	applicant := req.ToApplicant()
	if err := s.applicants.Create(ctx, applicant); err != nil {
		s.coordinator.Release(ctx, key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist enrollment")
	}

	if err := s.coordinator.Confirm(ctx, key); err != nil {
		// The record is durable; the reservation TTL covers the window
		// until the marker is backfilled from the durable store.
		s.logger.Warn("failed to confirm enrollment marker",
			zap.String("key", key.String()), zap.Error(err))
	}

	if s.events != nil {
		s.events.ApplicantEnrolled(ctx, applicant, institution.Nombre)
	}
	if s.subscriptions != nil {
		if err := s.subscriptions.MarkConverted(ctx, applicant.Mail); err != nil {
			s.logger.Warn("failed to mark subscription converted",
				zap.String("mail", applicant.Mail), zap.Error(err))
		}
	}

	s.logger.Info("enrollment committed",
		zap.String("dni", applicant.DNI),
		zap.String("carrera", applicant.CarreraInteres),
		zap.String("institucion", applicant.InstitucionSlug))
	return applicant, nil
}

// Subscribe registers an email interest subscription for a tenant.
func (s *EnrollmentService) Subscribe(ctx context.Context, req dto.SubscribeRequest) (*models.EmailSubscription, error) {
	if _, err := s.institutions.FindBySlug(ctx, req.InstitucionSlug); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}

	if existing, err := s.subscriptions.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already subscribed")
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}

	sub := &models.EmailSubscription{Email: req.Email, InstitucionSlug: req.InstitucionSlug}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}
	return sub, nil
}

// InstitutionStats aggregates enrollment counts for one tenant.
func (s *EnrollmentService) InstitutionStats(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error) {
	institution, err := s.institutions.FindBySlug(ctx, institucionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	stats, err := s.applicants.StatsByInstitution(ctx, institucionSlug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate enrollment stats")
	}
	stats.InstitucionNombre = institution.Nombre
	return stats, nil
}

// PlatformStats aggregates enrollment counts across every tenant.
func (s *EnrollmentService) PlatformStats(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	resp := &dto.PlatformStatsResponse{Instituciones: make([]models.InstitutionStats, 0, len(institutions))}
	for _, institution := range institutions {
		stats, err := s.applicants.StatsByInstitution(ctx, institution.Slug)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate enrollment stats")
		}
		stats.InstitucionNombre = institution.Nombre
		resp.Instituciones = append(resp.Instituciones, *stats)
		resp.Total += stats.TotalEnrollments
	}
	return resp, nil
}

// Ping reports coordinator reachability for health checks.
func (s *EnrollmentService) Ping(ctx context.Context) error {
	return s.coordinator.Ping(ctx)
}
