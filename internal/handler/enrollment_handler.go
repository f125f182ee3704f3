package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
	"github.com/becaslatam/becas-api/pkg/response"
)

type enrollmentService interface {
	Check(ctx context.Context, dni, carrera, institucionSlug string) (*dto.CheckEnrollmentResponse, error)
	Submit(ctx context.Context, req dto.SubmitEnrollmentRequest) (*models.Applicant, error)
	Subscribe(ctx context.Context, req dto.SubscribeRequest) (*models.EmailSubscription, error)
	InstitutionStats(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error)
	PlatformStats(ctx context.Context) (*dto.PlatformStatsResponse, error)
}

// EnrollmentHandler exposes the admission-control endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Check godoc
// @Summary Check carrera availability for a DNI
// @Tags Enrollment
// @Produce json
// @Param dni path string true "Applicant DNI"
// @Param carrera_interes query string true "Carrera of interest"
// @Param institucion_slug query string true "Institution slug"
// @Success 200 {object} response.Envelope
// @Router /enrollment/check/{dni} [get]
func (h *EnrollmentHandler) Check(c *gin.Context) {
	result, err := h.enrollments.Check(c.Request.Context(),
		c.Param("dni"), c.Query("carrera_interes"), c.Query("institucion_slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Submit godoc
// @Summary Submit an enrollment
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body dto.SubmitEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollment/submit [post]
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	var req dto.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload"))
		return
	}
	applicant, err := h.enrollments.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, applicant)
}

// Subscribe godoc
// @Summary Subscribe an email for enrollment news
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body dto.SubscribeRequest true "Subscription payload"
// @Success 201 {object} response.Envelope
// @Router /enrollment/subscribe [post]
func (h *EnrollmentHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscription payload"))
		return
	}
	sub, err := h.enrollments.Subscribe(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// InstitutionStats godoc
// @Summary Aggregate enrollment counts for one institution
// @Tags Enrollment
// @Produce json
// @Param institucion_slug path string true "Institution slug"
// @Success 200 {object} response.Envelope
// @Router /enrollment/status/{institucion_slug} [get]
func (h *EnrollmentHandler) InstitutionStats(c *gin.Context) {
	stats, err := h.enrollments.InstitutionStats(c.Request.Context(), c.Param("institucion_slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// PlatformStats godoc
// @Summary Aggregate enrollment counts across all institutions
// @Tags Enrollment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment/stats [get]
func (h *EnrollmentHandler) PlatformStats(c *gin.Context) {
	stats, err := h.enrollments.PlatformStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
