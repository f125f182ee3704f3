package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/service"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
	"github.com/becaslatam/becas-api/pkg/response"
)

// InstitutionHandler exposes tenant endpoints.
type InstitutionHandler struct {
	institutions *service.InstitutionService
}

// NewInstitutionHandler constructs InstitutionHandler.
func NewInstitutionHandler(institutions *service.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: institutions}
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instituciones [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	institutions, err := h.institutions.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions, nil)
}

// Get godoc
// @Summary Get an institution
// @Tags Institutions
// @Produce json
// @Param slug path string true "Institution slug"
// @Success 200 {object} response.Envelope
// @Router /instituciones/{slug} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	institution, err := h.institutions.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Create godoc
// @Summary Register an institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Router /instituciones [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	var req dto.CreateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload"))
		return
	}
	institution, err := h.institutions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, institution)
}
