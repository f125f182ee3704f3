package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

type enrollmentServiceMock struct {
	checkResp  *dto.CheckEnrollmentResponse
	checkErr   error
	submitResp *models.Applicant
	submitErr  error
	subResp    *models.EmailSubscription
	subErr     error
	statsResp  *models.InstitutionStats
	statsErr   error
	lastSubmit dto.SubmitEnrollmentRequest
	lastDNI    string
	lastSlug   string
}

func (m *enrollmentServiceMock) Check(ctx context.Context, dni, carrera, institucionSlug string) (*dto.CheckEnrollmentResponse, error) {
	m.lastDNI = dni
	return m.checkResp, m.checkErr
}

func (m *enrollmentServiceMock) Submit(ctx context.Context, req dto.SubmitEnrollmentRequest) (*models.Applicant, error) {
	m.lastSubmit = req
	return m.submitResp, m.submitErr
}

func (m *enrollmentServiceMock) Subscribe(ctx context.Context, req dto.SubscribeRequest) (*models.EmailSubscription, error) {
	return m.subResp, m.subErr
}

func (m *enrollmentServiceMock) InstitutionStats(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error) {
	m.lastSlug = institucionSlug
	return m.statsResp, m.statsErr
}

func (m *enrollmentServiceMock) PlatformStats(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	return &dto.PlatformStatsResponse{}, nil
}

func validSubmitPayload() []byte {
	payload, _ := json.Marshal(dto.SubmitEnrollmentRequest{
		Nombre:              "Lucia",
		Apellido:            "Fernandez",
		Sexo:                "femenino",
		DNI:                 "40111222",
		Mail:                "lucia@example.com",
		DepartamentoInteres: "ingenieria",
		CarreraInteres:      "ingenieria-en-sistemas",
		InstitucionSlug:     "uade",
	})
	return payload
}

func TestEnrollmentHandlerSubmitCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentServiceMock{
		submitResp: &models.Applicant{ID: "applicant-1", DNI: "40111222"},
	}
	handler := NewEnrollmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/submit", bytes.NewReader(validSubmitPayload()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "40111222", mockSvc.lastSubmit.DNI)
}

func TestEnrollmentHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&enrollmentServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/submit", bytes.NewBufferString(`{"dni":"40111222"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentServiceMock{
		submitErr: appErrors.Clone(appErrors.ErrConflict, "already enrolled in ingenieria-en-sistemas at this institution"),
	}
	handler := NewEnrollmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/submit", bytes.NewReader(validSubmitPayload()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrollmentHandlerSubmitUnknownInstitution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentServiceMock{
		submitErr: appErrors.Clone(appErrors.ErrNotFound, "institution not found"),
	}
	handler := NewEnrollmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/submit", bytes.NewReader(validSubmitPayload()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentHandlerCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentServiceMock{
		checkResp: &dto.CheckEnrollmentResponse{Available: true, Status: models.AvailabilityAvailable},
	}
	handler := NewEnrollmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/check/40111222?carrera_interes=abogacia&institucion_slug=uade", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "dni", Value: "40111222"}}

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "40111222", mockSvc.lastDNI)

	var envelope struct {
		Data dto.CheckEnrollmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Available)
}

func TestEnrollmentHandlerInstitutionStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentServiceMock{
		statsResp: &models.InstitutionStats{InstitucionSlug: "uade", TotalEnrollments: 3},
	}
	handler := NewEnrollmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/status/uade", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "institucion_slug", Value: "uade"}}

	handler.InstitutionStats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uade", mockSvc.lastSlug)
}
