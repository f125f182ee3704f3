package dto

import "github.com/becaslatam/becas-api/internal/models"

// SubmitEnrollmentRequest is the enrollment submission payload.
type SubmitEnrollmentRequest struct {
	Nombre              string                     `json:"nombre" binding:"required"`
	Apellido            string                     `json:"apellido" binding:"required"`
	Sexo                string                     `json:"sexo" binding:"required,oneof=masculino femenino"`
	DNI                 string                     `json:"dni" binding:"required,numeric,min=7,max=9"`
	Mail                string                     `json:"mail" binding:"required,email"`
	DepartamentoInteres string                     `json:"departamento_interes" binding:"required"`
	CarreraInteres      string                     `json:"carrera_interes" binding:"required"`
	InstitucionSlug     string                     `json:"institucion_slug" binding:"required"`
	Documentos          *models.ApplicantDocuments `json:"documentos"`
}

// ToApplicant builds the durable record from the submission payload.
func (r *SubmitEnrollmentRequest) ToApplicant() *models.Applicant {
	return &models.Applicant{
		Nombre:              r.Nombre,
		Apellido:            r.Apellido,
		Sexo:                r.Sexo,
		DNI:                 r.DNI,
		Mail:                r.Mail,
		DepartamentoInteres: r.DepartamentoInteres,
		CarreraInteres:      r.CarreraInteres,
		InstitucionSlug:     r.InstitucionSlug,
		Estado:              models.StatusInteres,
	}
}

// CheckEnrollmentResponse reports whether an enrollment key is still open.
type CheckEnrollmentResponse struct {
	Available        bool                      `json:"available"`
	Status           models.AvailabilityStatus `json:"status"`
	Message          string                    `json:"message"`
	ExistingCarreras []string                  `json:"existing_carreras,omitempty"`
}

// SubscribeRequest captures an email interest subscription for a tenant.
type SubscribeRequest struct {
	Email           string `json:"email" binding:"required,email"`
	InstitucionSlug string `json:"institucion_slug" binding:"required"`
}

// PlatformStatsResponse aggregates enrollment counts across every tenant.
type PlatformStatsResponse struct {
	Instituciones []models.InstitutionStats `json:"instituciones"`
	Total         int                       `json:"total"`
}
