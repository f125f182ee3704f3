package dto

import (
	"time"

	"github.com/becaslatam/becas-api/internal/models"
)

// UpdateApplicantRequest is the mutable slice of an applicant record. Estado
// transitions drive the decision workflow; identity fields stay fixed.
type UpdateApplicantRequest struct {
	Nombre          string                     `json:"nombre"`
	Apellido        string                     `json:"apellido"`
	Mail            string                     `json:"mail" binding:"omitempty,email"`
	FechaEntrevista *time.Time                 `json:"fecha_entrevista"`
	Estado          models.ApplicantStatus     `json:"estado" binding:"omitempty,estado"`
	Documentos      *models.ApplicantDocuments `json:"documentos"`
	Comite          *models.CommitteeDecision  `json:"comite"`
}

// CreateInstitutionRequest registers a new tenant.
type CreateInstitutionRequest struct {
	Slug   string `json:"slug" binding:"required,lowercase,excludesall= "`
	Nombre string `json:"nombre" binding:"required"`
}
