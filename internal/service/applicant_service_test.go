package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	"github.com/becaslatam/becas-api/internal/notifier"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

type mockApplicantStore struct {
	records map[string]*models.Applicant
	updated []*models.Applicant
	deleted []string
}

func (m *mockApplicantStore) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	if a, ok := m.records[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicantStore) Update(ctx context.Context, applicant *models.Applicant) error {
	if _, ok := m.records[applicant.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *applicant
	m.records[applicant.ID] = &copied
	m.updated = append(m.updated, &copied)
	return nil
}

func (m *mockApplicantStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockApplicantStore) ListByInstitution(ctx context.Context, institucionSlug string) ([]models.Applicant, error) {
	var list []models.Applicant
	for _, a := range m.records {
		if a.InstitucionSlug == institucionSlug {
			list = append(list, *a)
		}
	}
	return list, nil
}

type mockKeyForgetter struct {
	forgotten []models.EnrollmentKey
	err       error
}

func (m *mockKeyForgetter) Forget(ctx context.Context, key models.EnrollmentKey) error {
	if m.err != nil {
		return m.err
	}
	m.forgotten = append(m.forgotten, key)
	return nil
}

type mockDecisionEvents struct {
	statusChanges []models.ApplicantStatus
	finalized     []string
	corrected     []notifier.ArchivePatch
}

func (m *mockDecisionEvents) StatusChanged(ctx context.Context, applicant *models.Applicant, old models.ApplicantStatus) {
	m.statusChanges = append(m.statusChanges, old)
}

func (m *mockDecisionEvents) DecisionFinalized(ctx context.Context, applicant *models.Applicant) {
	m.finalized = append(m.finalized, applicant.ID)
}

func (m *mockDecisionEvents) DecisionCorrected(ctx context.Context, applicant *models.Applicant, patch notifier.ArchivePatch) {
	m.corrected = append(m.corrected, patch)
}

func storedApplicant() *models.Applicant {
	return &models.Applicant{
		ID:                  "applicant-1",
		Nombre:              "Lucia",
		Apellido:            "Fernandez",
		Sexo:                "femenino",
		DNI:                 "40111222",
		Mail:                "lucia@example.com",
		DepartamentoInteres: "ingenieria",
		CarreraInteres:      "ingenieria-en-sistemas",
		FechaInteres:        time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Estado:              models.StatusInteres,
		InstitucionSlug:     "uade",
	}
}

func newTestApplicantService() (*ApplicantService, *mockApplicantStore, *mockKeyForgetter, *mockDecisionEvents) {
	store := &mockApplicantStore{records: map[string]*models.Applicant{"applicant-1": storedApplicant()}}
	coord := &mockKeyForgetter{}
	events := &mockDecisionEvents{}
	svc := NewApplicantService(store, coord, events, zap.NewNop())
	return svc, store, coord, events
}

func TestUpdateFirstTerminalStampsResolution(t *testing.T) {
	svc, store, _, events := newTestApplicantService()

	updated, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{
		Estado: models.StatusAceptado,
		Comite: &models.CommitteeDecision{Decision: "ACEPTADO", Comentarios: "perfil solido"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAceptado, updated.Estado)
	require.NotNil(t, updated.FechaResolucion)
	assert.Equal(t, []string{"applicant-1"}, events.finalized)
	assert.Empty(t, events.corrected)
	assert.Equal(t, []models.ApplicantStatus{models.StatusInteres}, events.statusChanges)
	require.NotNil(t, store.records["applicant-1"].FechaResolucion)
}

func TestUpdateRepeatedTerminalIsCorrection(t *testing.T) {
	svc, store, _, events := newTestApplicantService()

	_, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{Estado: models.StatusAceptado})
	require.NoError(t, err)
	firstResolution := store.records["applicant-1"].FechaResolucion
	require.NotNil(t, firstResolution)

	updated, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{
		Estado: models.StatusAceptado,
		Mail:   "lucia.nueva@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, firstResolution, updated.FechaResolucion, "resolution date must not move on corrections")
	assert.Len(t, events.finalized, 1, "archive registration happens once")
	require.Len(t, events.corrected, 1)
	assert.Equal(t, "lucia.nueva@example.com", events.corrected[0].Mail)
	assert.Len(t, events.statusChanges, 1, "identical terminal update is not a transition")
}

func TestUpdateComiteAutogeneratesReviewFields(t *testing.T) {
	svc, _, _, _ := newTestApplicantService()

	updated, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{
		Comite: &models.CommitteeDecision{Decision: "PENDIENTE"},
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Comite)
	assert.NotEmpty(t, updated.Comite.ComiteID)
	assert.NotNil(t, updated.Comite.FechaRevision)
}

func TestUpdateStatusChangeNotifiesGraph(t *testing.T) {
	svc, _, _, events := newTestApplicantService()

	_, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{Estado: models.StatusEntrevista})
	require.NoError(t, err)

	assert.Equal(t, []models.ApplicantStatus{models.StatusInteres}, events.statusChanges)
	assert.Empty(t, events.finalized)
}

func TestUpdateRejectsUnknownEstado(t *testing.T) {
	svc, _, _, _ := newTestApplicantService()

	_, err := svc.Update(context.Background(), "applicant-1", dto.UpdateApplicantRequest{Estado: "EGRESADO"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newTestApplicantService()

	_, err := svc.Update(context.Background(), "missing", dto.UpdateApplicantRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteFreesEnrollmentKey(t *testing.T) {
	svc, store, coord, _ := newTestApplicantService()

	require.NoError(t, svc.Delete(context.Background(), "applicant-1"))

	assert.Equal(t, []string{"applicant-1"}, store.deleted)
	require.Len(t, coord.forgotten, 1)
	assert.Equal(t, models.EnrollmentKey{
		DNI: "40111222", Carrera: "ingenieria-en-sistemas", InstitucionSlug: "uade",
	}, coord.forgotten[0])
}

func TestRosterDatasetShapesRows(t *testing.T) {
	svc, store, _, _ := newTestApplicantService()
	resolved := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	record := store.records["applicant-1"]
	record.Estado = models.StatusAceptado
	record.FechaResolucion = &resolved

	dataset, err := svc.RosterDataset(context.Background(), "uade")
	require.NoError(t, err)

	assert.Equal(t, rosterHeaders, dataset.Headers)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "40111222", dataset.Rows[0]["DNI"])
	assert.Equal(t, "ACEPTADO", dataset.Rows[0]["Estado"])
	assert.Equal(t, "2026-06-01", dataset.Rows[0]["Fecha Resolucion"])
}
