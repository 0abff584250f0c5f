package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

type fakeUserRepo struct {
	roles map[uuid.UUID]string
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) GetByIDAndRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if f.roles[id] == role {
		return &model.User{Role: role}, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAppointmentRepo) ListByPatient(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.byID {
		if a.UserID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByDoctor(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.byID {
		if a.DoctorID != nil && *a.DoctorID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.DoctorID != nil {
		a.DoctorID = patch.DoctorID
	}
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.Reason != nil {
		a.Reason = *patch.Reason
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	return nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAppointmentRepo) ActiveDatesInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	return nil, nil
}

type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	r.events = append(r.events, eventType)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeAppointmentRepo, *recordingEmitter, uuid.UUID, uuid.UUID) {
	t.Helper()
	patientID := uuid.New()
	doctorID := uuid.New()
	repo := newFakeAppointmentRepo()
	emitter := &recordingEmitter{}
	users := &fakeUserRepo{roles: map[uuid.UUID]string{
		patientID: model.UserRolePatient,
		doctorID:  model.UserRoleDoctor,
	}}
	return NewService(repo, users, emitter), repo, emitter, patientID, doctorID
}

func TestCreateStartsPending(t *testing.T) {
	svc, _, emitter, patientID, doctorID := newTestService(t)

	apt, err := svc.Create(context.Background(), &CreateAppointmentInput{
		PatientID: patientID,
		DoctorID:  &doctorID,
		Date:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
		Reason:    "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, []string{model.EventAppointmentCreated}, emitter.events)
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	svc, _, _, _, doctorID := newTestService(t)

	_, err := svc.Create(context.Background(), &CreateAppointmentInput{
		PatientID: uuid.New(),
		DoctorID:  &doctorID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestCreateRejectsNonDoctorAssignment(t *testing.T) {
	svc, _, _, patientID, _ := newTestService(t)

	// Another patient's id in the doctor field must not pass.
	otherPatient := patientID
	_, err := svc.Create(context.Background(), &CreateAppointmentInput{
		PatientID: patientID,
		DoctorID:  &otherPatient,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestUpdateAcceptsAnyValidStatusValue(t *testing.T) {
	svc, repo, _, patientID, _ := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)

	repo.byID[apt.ID].Status = model.AppointmentStatusCompleted

	// The patch path only checks the value, not the transition table,
	// so COMPLETED -> CONFIRMED goes through.
	status := model.AppointmentStatusConfirmed
	updated, err := svc.Update(ctx, apt.ID, &model.AppointmentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
}

func TestUpdateRejectsUnknownStatusValue(t *testing.T) {
	svc, _, _, patientID, _ := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)

	status := model.AppointmentStatus("SCHEDULED")
	_, err = svc.Update(ctx, apt.ID, &model.AppointmentPatch{Status: &status})
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestTransitionFollowsTable(t *testing.T) {
	svc, _, _, patientID, _ := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)

	apt, err = svc.Transition(ctx, apt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)

	apt, err = svc.Transition(ctx, apt.ID, model.AppointmentStatusInProgress)
	require.NoError(t, err)

	apt, err = svc.Transition(ctx, apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)
}

func TestTransitionRejectsTerminal(t *testing.T) {
	svc, repo, _, patientID, _ := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)
	repo.byID[apt.ID].Status = model.AppointmentStatusCompleted

	_, err = svc.Transition(ctx, apt.ID, model.AppointmentStatusConfirmed)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))
}

func TestForceCancelBypassesTerminality(t *testing.T) {
	svc, repo, emitter, patientID, _ := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)
	repo.byID[apt.ID].Status = model.AppointmentStatusCompleted

	cancelled, err := svc.ForceCancel(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Contains(t, emitter.events, model.EventAppointmentCancelled)
}

func TestForceCancelUnknownAppointment(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ForceCancel(context.Background(), uuid.New())
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestListByPatientAndDoctor(t *testing.T) {
	svc, _, _, patientID, doctorID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		DoctorID:  &doctorID,
		Date:      time.Now(),
		Reason:    "checkup",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateAppointmentInput{
		PatientID: patientID,
		Date:      time.Now(),
		Reason:    "follow-up",
	})
	require.NoError(t, err)

	byPatient, err := svc.ListByPatient(ctx, patientID)
	require.NoError(t, err)
	assert.Len(t, byPatient, 2)

	byDoctor, err := svc.ListByDoctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Len(t, byDoctor, 1)
}
