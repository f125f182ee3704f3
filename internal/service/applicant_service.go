package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	"github.com/becaslatam/becas-api/internal/notifier"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
	"github.com/becaslatam/becas-api/pkg/export"
)

type applicantStore interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	Update(ctx context.Context, applicant *models.Applicant) error
	Delete(ctx context.Context, id string) error
	ListByInstitution(ctx context.Context, institucionSlug string) ([]models.Applicant, error)
}

type keyForgetter interface {
	Forget(ctx context.Context, key models.EnrollmentKey) error
}

type decisionEvents interface {
	StatusChanged(ctx context.Context, applicant *models.Applicant, old models.ApplicantStatus)
	DecisionFinalized(ctx context.Context, applicant *models.Applicant)
	DecisionCorrected(ctx context.Context, applicant *models.Applicant, patch notifier.ArchivePatch)
}

// ApplicantService manages applicant records after admission. Creation only
// happens through the enrollment workflow; this service covers reads, status
// transitions and removal.
type ApplicantService struct {
	applicants  applicantStore
	coordinator keyForgetter
	events      decisionEvents
	logger      *zap.Logger
}

// NewApplicantService constructs ApplicantService.
func NewApplicantService(applicants applicantStore, coord keyForgetter, events decisionEvents, logger *zap.Logger) *ApplicantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{applicants: applicants, coordinator: coord, events: events, logger: logger}
}

// Get returns an applicant by id.
func (s *ApplicantService) Get(ctx context.Context, id string) (*models.Applicant, error) {
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}
	return applicant, nil
}

// ListByInstitution returns a tenant's roster, most recently resolved first.
func (s *ApplicantService) ListByInstitution(ctx context.Context, institucionSlug string) ([]models.Applicant, error) {
	applicants, err := s.applicants.ListByInstitution(ctx, institucionSlug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	return applicants, nil
}

// Update applies the mutable fields of a record and drives the decision
// workflow. The first transition into a terminal status stamps the resolution
// date and registers the record with the archive; a repeated terminal update
// is treated as a correction and patches the archive in place.
func (s *ApplicantService) Update(ctx context.Context, id string, req dto.UpdateApplicantRequest) (*models.Applicant, error) {
	applicant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Estado != "" && !req.Estado.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown estado")
	}

	wasTerminal := applicant.Estado.Terminal()
	old := applicant.Estado

	if req.Nombre != "" {
		applicant.Nombre = req.Nombre
	}
	if req.Apellido != "" {
		applicant.Apellido = req.Apellido
	}
	if req.Mail != "" {
		applicant.Mail = req.Mail
	}
	if req.FechaEntrevista != nil {
		applicant.FechaEntrevista = req.FechaEntrevista
	}
	if req.Documentos != nil {
		applicant.Documentos = req.Documentos
	}
	if req.Comite != nil {
		comite := *req.Comite
		if comite.ComiteID == "" {
			comite.ComiteID = uuid.NewString()
		}
		if comite.FechaRevision == nil {
			now := time.Now().UTC()
			comite.FechaRevision = &now
		}
		applicant.Comite = &comite
	}

	statusChanged := req.Estado != "" && req.Estado != old
	if statusChanged {
		applicant.Estado = req.Estado
	}

	firstFinal := applicant.Estado.Terminal() && applicant.FechaResolucion == nil
	if firstFinal {
		now := time.Now().UTC()
		applicant.FechaResolucion = &now
	}

	if err := s.applicants.Update(ctx, applicant); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update applicant")
	}

	if s.events != nil {
		if statusChanged {
			s.events.StatusChanged(ctx, applicant, old)
		}
		switch {
		case firstFinal:
			s.events.DecisionFinalized(ctx, applicant)
		case wasTerminal && applicant.Estado.Terminal():
			s.events.DecisionCorrected(ctx, applicant, notifier.ArchivePatch{
				Mail:       req.Mail,
				Documentos: req.Documentos,
				Comite:     applicant.Comite,
				Estado:     req.Estado,
			})
		}
	}
	return applicant, nil
}

// Delete removes a record and frees its enrollment key so the DNI can apply
// again.
func (s *ApplicantService) Delete(ctx context.Context, id string) error {
	applicant, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.applicants.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete applicant")
	}
	if err := s.coordinator.Forget(ctx, applicant.Key()); err != nil {
		s.logger.Warn("failed to clear enrollment key after delete",
			zap.String("key", applicant.Key().String()), zap.Error(err))
	}
	return nil
}

var rosterHeaders = []string{"DNI", "Nombre", "Apellido", "Mail", "Carrera", "Departamento", "Estado", "Fecha Interes", "Fecha Resolucion"}

// RosterDataset shapes a tenant's roster for export.
func (s *ApplicantService) RosterDataset(ctx context.Context, institucionSlug string) (export.Dataset, error) {
	applicants, err := s.ListByInstitution(ctx, institucionSlug)
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(applicants))
	for _, a := range applicants {
		row := map[string]string{
			"DNI":           a.DNI,
			"Nombre":        a.Nombre,
			"Apellido":      a.Apellido,
			"Mail":          a.Mail,
			"Carrera":       a.CarreraInteres,
			"Departamento":  a.DepartamentoInteres,
			"Estado":        string(a.Estado),
			"Fecha Interes": a.FechaInteres.Format("2006-01-02"),
		}
		if a.FechaResolucion != nil {
			row["Fecha Resolucion"] = a.FechaResolucion.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}, nil
}
