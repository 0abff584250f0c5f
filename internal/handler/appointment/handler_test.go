package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
	"github.com/MedCore-Microservices/clinic-api/internal/service/appointment"
)

type stubUserRepo struct {
	roles map[uuid.UUID]string
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (s *stubUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (s *stubUserRepo) GetByIDAndRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if s.roles[id] == role {
		return &model.User{Role: role}, nil
	}
	return nil, repository.ErrNotFound
}
func (s *stubUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (s *stubUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func (s *stubAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	s.byID[a.ID] = a
	return nil
}

func (s *stubAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *stubAppointmentRepo) ListByPatient(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) ListByDoctor(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) error {
	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Reason != nil {
		a.Reason = *patch.Reason
	}
	return nil
}

func (s *stubAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *stubAppointmentRepo) ActiveDatesInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	return nil, nil
}

type apiResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupTestRouter(t *testing.T) (*gin.Engine, *stubAppointmentRepo, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patientID := uuid.New()
	repo := &stubAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
	users := &stubUserRepo{roles: map[uuid.UUID]string{patientID: model.UserRolePatient}}
	svc := appointment.NewService(repo, users, nil)

	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, repo, patientID
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCreateAppointmentEndpoint(t *testing.T) {
	engine, repo, patientID := setupTestRouter(t)

	w, resp := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id": patientID.String(),
		"date":       "2026-03-10",
		"time":       "09:30",
		"reason":     "checkup",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, string(model.AppointmentStatusPending), resp.Data.Status)

	id, err := uuid.Parse(resp.Data.ID)
	require.NoError(t, err)
	stored := repo.byID[id]
	require.NotNil(t, stored)
	want := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
	assert.True(t, want.Equal(stored.Date), "want %v, got %v", want, stored.Date)
}

func TestCreateAppointmentRejectsMissingFields(t *testing.T) {
	engine, _, patientID := setupTestRouter(t)

	w, resp := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id": patientID.String(),
		"date":       "2026-03-10",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
}

func TestCancelEndpointBypassesTerminal(t *testing.T) {
	engine, repo, patientID := setupTestRouter(t)

	_, created := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id": patientID.String(),
		"date":       "2026-03-10",
		"time":       "09:30",
		"reason":     "checkup",
	})
	id := uuid.MustParse(created.Data.ID)
	repo.byID[id].Status = model.AppointmentStatusCompleted

	w, resp := doRequest(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/appointments/%s", id), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.AppointmentStatusCancelled), resp.Data.Status)
}

func TestTransitionEndpointRejectsInvalidStep(t *testing.T) {
	engine, repo, patientID := setupTestRouter(t)

	_, created := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id": patientID.String(),
		"date":       "2026-03-10",
		"time":       "09:30",
		"reason":     "checkup",
	})
	id := uuid.MustParse(created.Data.ID)
	repo.byID[id].Status = model.AppointmentStatusCompleted

	w, resp := doRequest(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/confirm", id), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
}

func TestGetAppointmentNotFound(t *testing.T) {
	engine, _, _ := setupTestRouter(t)

	w, resp := doRequest(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/appointments/%s", uuid.New()), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
}
