package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/service"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
	"github.com/becaslatam/becas-api/pkg/export"
	"github.com/becaslatam/becas-api/pkg/response"
)

// ApplicantHandler exposes applicant record endpoints. Creation goes through
// the enrollment workflow so the admission guarantee also covers this surface.
type ApplicantHandler struct {
	applicants  *service.ApplicantService
	enrollments *service.EnrollmentService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewApplicantHandler constructs ApplicantHandler.
func NewApplicantHandler(applicants *service.ApplicantService, enrollments *service.EnrollmentService) *ApplicantHandler {
	return &ApplicantHandler{
		applicants:  applicants,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

// Create godoc
// @Summary Create an applicant record
// @Tags Applicants
// @Accept json
// @Produce json
// @Param payload body dto.SubmitEnrollmentRequest true "Applicant payload"
// @Success 201 {object} response.Envelope
// @Router /estudiantes [post]
func (h *ApplicantHandler) Create(c *gin.Context) {
	var req dto.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid applicant payload"))
		return
	}
	applicant, err := h.enrollments.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, applicant)
}

// Get godoc
// @Summary Get an applicant record
// @Tags Applicants
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/{id} [get]
func (h *ApplicantHandler) Get(c *gin.Context) {
	applicant, err := h.applicants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicant, nil)
}

// Update godoc
// @Summary Update an applicant record
// @Tags Applicants
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param payload body dto.UpdateApplicantRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/{id} [put]
func (h *ApplicantHandler) Update(c *gin.Context) {
	var req dto.UpdateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload"))
		return
	}
	applicant, err := h.applicants.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicant, nil)
}

// Delete godoc
// @Summary Delete an applicant record
// @Tags Applicants
// @Param id path string true "Applicant ID"
// @Success 204
// @Router /estudiantes/{id} [delete]
func (h *ApplicantHandler) Delete(c *gin.Context) {
	if err := h.applicants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByInstitution godoc
// @Summary List an institution's applicants
// @Tags Applicants
// @Produce json
// @Param slug path string true "Institution slug"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/institucion/{slug} [get]
func (h *ApplicantHandler) ListByInstitution(c *gin.Context) {
	applicants, err := h.applicants.ListByInstitution(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, nil)
}

// Export godoc
// @Summary Export an institution's roster
// @Tags Applicants
// @Produce text/csv,application/pdf
// @Param slug path string true "Institution slug"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /estudiantes/institucion/{slug}/export [get]
func (h *ApplicantHandler) Export(c *gin.Context) {
	slug := c.Param("slug")
	dataset, err := h.applicants.RosterDataset(c.Request.Context(), slug)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="postulantes-%s.csv"`, slug))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Postulantes %s", slug))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="postulantes-%s.pdf"`, slug))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
