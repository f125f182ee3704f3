package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/dto"
	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

// mockCoordinator reproduces the coordinator's semantics in memory: SetNX
// atomicity under a mutex, permanent markers, fail-closed on outage.
type mockCoordinator struct {
	mu         sync.Mutex
	confirmed  map[string]bool
	reserved   map[string]bool
	durable    map[string]bool
	carreras   map[string][]string
	reserveErr error
	confirmErr error
	released   []models.EnrollmentKey
}

func newMockCoordinator() *mockCoordinator {
	return &mockCoordinator{
		confirmed: map[string]bool{},
		reserved:  map[string]bool{},
		durable:   map[string]bool{},
		carreras:  map[string][]string{},
	}
}

func (m *mockCoordinator) Exists(ctx context.Context, key models.EnrollmentKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmed[key.String()] || m.reserved[key.String()], nil
}

func (m *mockCoordinator) ExistsDurable(ctx context.Context, key models.EnrollmentKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durable[key.String()], nil
}

func (m *mockCoordinator) Reserve(ctx context.Context, key models.EnrollmentKey, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserveErr != nil {
		return false, m.reserveErr
	}
	if m.confirmed[key.String()] || m.reserved[key.String()] {
		return false, nil
	}
	m.reserved[key.String()] = true
	return true, nil
}

func (m *mockCoordinator) Release(ctx context.Context, key models.EnrollmentKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reserved, key.String())
	m.released = append(m.released, key)
}

func (m *mockCoordinator) Confirm(ctx context.Context, key models.EnrollmentKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.confirmed[key.String()] = true
	delete(m.reserved, key.String())
	return nil
}

func (m *mockCoordinator) Status(ctx context.Context, key models.EnrollmentKey) (models.AvailabilityStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.confirmed[key.String()]:
		return models.AvailabilityEnrolled, nil
	case m.reserved[key.String()]:
		return models.AvailabilityReserved, nil
	}
	return models.AvailabilityAvailable, nil
}

func (m *mockCoordinator) CarrerasFor(ctx context.Context, dni, institucionSlug string) ([]string, error) {
	return m.carreras[dni+"@"+institucionSlug], nil
}

func (m *mockCoordinator) Ping(ctx context.Context) error { return nil }

type mockApplicantWriter struct {
	mu        sync.Mutex
	created   []*models.Applicant
	createErr error
	stats     map[string]*models.InstitutionStats
}

func (m *mockApplicantWriter) Create(ctx context.Context, applicant *models.Applicant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	applicant.ID = "applicant-1"
	m.created = append(m.created, applicant)
	return nil
}

func (m *mockApplicantWriter) StatsByInstitution(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error) {
	if s, ok := m.stats[institucionSlug]; ok {
		copied := *s
		return &copied, nil
	}
	return &models.InstitutionStats{InstitucionSlug: institucionSlug}, nil
}

type mockInstitutionReader struct {
	institutions map[string]*models.Institution
}

func (m *mockInstitutionReader) FindBySlug(ctx context.Context, slug string) (*models.Institution, error) {
	if inst, ok := m.institutions[slug]; ok {
		return inst, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstitutionReader) List(ctx context.Context) ([]models.Institution, error) {
	list := make([]models.Institution, 0, len(m.institutions))
	for _, inst := range m.institutions {
		list = append(list, *inst)
	}
	return list, nil
}

type mockSubscriptionStore struct {
	subs       map[string]*models.EmailSubscription
	converted  []string
	convertErr error
}

func (m *mockSubscriptionStore) Create(ctx context.Context, sub *models.EmailSubscription) error {
	if m.subs == nil {
		m.subs = map[string]*models.EmailSubscription{}
	}
	sub.ID = "sub-1"
	m.subs[sub.Email] = sub
	return nil
}

func (m *mockSubscriptionStore) FindByEmail(ctx context.Context, email string) (*models.EmailSubscription, error) {
	if sub, ok := m.subs[email]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubscriptionStore) MarkConverted(ctx context.Context, email string) error {
	if m.convertErr != nil {
		return m.convertErr
	}
	m.converted = append(m.converted, email)
	return nil
}

type mockEnrollmentEvents struct {
	mu       sync.Mutex
	enrolled []string
}

func (m *mockEnrollmentEvents) ApplicantEnrolled(ctx context.Context, applicant *models.Applicant, institucionNombre string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrolled = append(m.enrolled, applicant.Key().String())
}

func submitRequest() dto.SubmitEnrollmentRequest {
	return dto.SubmitEnrollmentRequest{
		Nombre:              "Lucia",
		Apellido:            "Fernandez",
		Sexo:                "femenino",
		DNI:                 "40111222",
		Mail:                "lucia@example.com",
		DepartamentoInteres: "ingenieria",
		CarreraInteres:      "ingenieria-en-sistemas",
		InstitucionSlug:     "uade",
	}
}

func newTestEnrollmentService(coord *mockCoordinator) (*EnrollmentService, *mockApplicantWriter, *mockSubscriptionStore, *mockEnrollmentEvents) {
	applicants := &mockApplicantWriter{}
	institutions := &mockInstitutionReader{institutions: map[string]*models.Institution{
		"uade": {ID: "inst-1", Slug: "uade", Nombre: "UADE"},
	}}
	subs := &mockSubscriptionStore{}
	events := &mockEnrollmentEvents{}
	svc := NewEnrollmentService(coord, applicants, institutions, subs, events, 15*time.Minute, zap.NewNop())
	return svc, applicants, subs, events
}

func TestSubmitCreatesAndConfirms(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, subs, events := newTestEnrollmentService(coord)
	subs.subs = map[string]*models.EmailSubscription{
		"lucia@example.com": {ID: "sub-1", Email: "lucia@example.com", InstitucionSlug: "uade"},
	}

	applicant, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	require.NotNil(t, applicant)

	assert.Equal(t, models.StatusInteres, applicant.Estado)
	assert.Len(t, applicants.created, 1)
	assert.True(t, coord.confirmed[applicant.Key().String()], "key must be confirmed after persist")
	assert.Equal(t, []string{applicant.Key().String()}, events.enrolled)
	assert.Equal(t, []string{"lucia@example.com"}, subs.converted)
}

func TestSubmitUnknownInstitution(t *testing.T) {
	svc, applicants, _, _ := newTestEnrollmentService(newMockCoordinator())

	req := submitRequest()
	req.InstitucionSlug = "desconocida"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, applicants.created)
}

func TestSubmitDuplicateFromDurableStore(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	req := submitRequest()
	key := models.EnrollmentKey{DNI: req.DNI, Carrera: req.CarreraInteres, InstitucionSlug: req.InstitucionSlug}
	coord.durable[key.String()] = true

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, req.CarreraInteres)
	assert.Empty(t, applicants.created)
}

func TestSubmitLosesReservation(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	req := submitRequest()
	key := models.EnrollmentKey{DNI: req.DNI, Carrera: req.CarreraInteres, InstitucionSlug: req.InstitucionSlug}
	coord.reserved[key.String()] = true

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, applicants.created)
}

func TestSubmitFailsClosedWhenCoordinatorDown(t *testing.T) {
	coord := newMockCoordinator()
	coord.reserveErr = appErrors.ErrCoordinatorUnavailable
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	_, err := svc.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCoordinatorUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, applicants.created)
}

func TestSubmitReleasesReservationOnPersistFailure(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)
	applicants.createErr = errors.New("disk full")

	req := submitRequest()
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	key := models.EnrollmentKey{DNI: req.DNI, Carrera: req.CarreraInteres, InstitucionSlug: req.InstitucionSlug}
	assert.Equal(t, []models.EnrollmentKey{key}, coord.released)
	assert.False(t, coord.reserved[key.String()], "reservation must be freed for retries")
}

func TestSubmitConfirmFailureStillSucceeds(t *testing.T) {
	coord := newMockCoordinator()
	coord.confirmErr = errors.New("connection reset")
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	applicant, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err, "durable record is the authority once persisted")
	require.NotNil(t, applicant)
	assert.Len(t, applicants.created, 1)
}

func TestSubmitConvertFailureDoesNotAffectResult(t *testing.T) {
	coord := newMockCoordinator()
	svc, _, subs, _ := newTestEnrollmentService(coord)
	subs.convertErr = errors.New("timeout")

	_, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
}

func TestSubmitConcurrentSingleWinner(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), submitRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one submission may commit")
	assert.Len(t, applicants.created, 1)
}

func TestSubmitSequenceAcrossCarreras(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)

	first, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusInteres, first.Estado)

	_, err = svc.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already enrolled")

	other := submitRequest()
	other.CarreraInteres = "ingenieria-informatica"
	second, err := svc.Submit(context.Background(), other)
	require.NoError(t, err, "a different carrera is an independent key")
	assert.Equal(t, "ingenieria-informatica", second.CarreraInteres)
	assert.Len(t, applicants.created, 2)
}

func TestCheckClassifiesKey(t *testing.T) {
	coord := newMockCoordinator()
	svc, _, _, _ := newTestEnrollmentService(coord)
	coord.carreras["40111222@uade"] = []string{"abogacia"}

	result, err := svc.Check(context.Background(), "40111222", "ingenieria-en-sistemas", "uade")
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, models.AvailabilityAvailable, result.Status)
	assert.Equal(t, []string{"abogacia"}, result.ExistingCarreras)

	key := models.EnrollmentKey{DNI: "40111222", Carrera: "ingenieria-en-sistemas", InstitucionSlug: "uade"}
	coord.confirmed[key.String()] = true

	result, err = svc.Check(context.Background(), "40111222", "ingenieria-en-sistemas", "uade")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, models.AvailabilityEnrolled, result.Status)
}

func TestCheckRequiresAllParams(t *testing.T) {
	svc, _, _, _ := newTestEnrollmentService(newMockCoordinator())

	_, err := svc.Check(context.Background(), "40111222", "", "uade")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubscribeRejectsDuplicateEmail(t *testing.T) {
	svc, _, subs, _ := newTestEnrollmentService(newMockCoordinator())

	_, err := svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "lucia@example.com", InstitucionSlug: "uade"})
	require.NoError(t, err)
	assert.NotNil(t, subs.subs["lucia@example.com"])

	_, err = svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "lucia@example.com", InstitucionSlug: "uade"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubscribeUnknownInstitution(t *testing.T) {
	svc, _, _, _ := newTestEnrollmentService(newMockCoordinator())

	_, err := svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "lucia@example.com", InstitucionSlug: "desconocida"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInstitutionStats(t *testing.T) {
	coord := newMockCoordinator()
	svc, applicants, _, _ := newTestEnrollmentService(coord)
	applicants.stats = map[string]*models.InstitutionStats{
		"uade": {InstitucionSlug: "uade", TotalEnrollments: 10, PendingEnrollments: 4, ConfirmedEnrollments: 5, RejectedEnrollments: 1},
	}

	stats, err := svc.InstitutionStats(context.Background(), "uade")
	require.NoError(t, err)
	assert.Equal(t, "UADE", stats.InstitucionNombre)
	assert.Equal(t, 10, stats.TotalEnrollments)
	assert.Equal(t, 5, stats.ConfirmedEnrollments)

	_, err = svc.InstitutionStats(context.Background(), "desconocida")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlatformStatsSumsTenants(t *testing.T) {
	coord := newMockCoordinator()
	applicants := &mockApplicantWriter{stats: map[string]*models.InstitutionStats{
		"uade": {InstitucionSlug: "uade", TotalEnrollments: 10},
		"utn":  {InstitucionSlug: "utn", TotalEnrollments: 7},
	}}
	institutions := &mockInstitutionReader{institutions: map[string]*models.Institution{
		"uade": {Slug: "uade", Nombre: "UADE"},
		"utn":  {Slug: "utn", Nombre: "UTN"},
	}}
	svc := NewEnrollmentService(coord, applicants, institutions, &mockSubscriptionStore{}, nil, 15*time.Minute, zap.NewNop())

	stats, err := svc.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.Instituciones, 2)
	assert.Equal(t, 17, stats.Total)
}
