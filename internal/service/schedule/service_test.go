package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedCore-Microservices/clinic-api/internal/config"
	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

type fakeUserRepo struct {
	doctors map[uuid.UUID]bool
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) GetByIDAndRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if role == model.UserRoleDoctor && f.doctors[id] {
		return &model.User{Role: model.UserRoleDoctor}, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return nil
}

type slotKey struct {
	start int64
	end   int64
}

type fakeSlotRepo struct {
	slots map[slotKey]*model.ScheduleSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[slotKey]*model.ScheduleSlot)}
}

func (f *fakeSlotRepo) key(start, end time.Time) slotKey {
	return slotKey{start: start.UnixNano(), end: end.UnixNano()}
}

func (f *fakeSlotRepo) Insert(ctx context.Context, slot *model.ScheduleSlot) error {
	k := f.key(slot.StartTime, slot.EndTime)
	if _, ok := f.slots[k]; ok {
		return repository.ErrDuplicateSlot
	}
	slot.ID = uuid.New()
	f.slots[k] = slot
	return nil
}

func (f *fakeSlotRepo) Reopen(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error {
	slot, ok := f.slots[f.key(start, end)]
	if !ok {
		return repository.ErrNotFound
	}
	slot.Status = model.SlotStatusAvailable
	slot.BlockReason = nil
	return nil
}

func (f *fakeSlotRepo) ListRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.ScheduleSlot, error) {
	var out []*model.ScheduleSlot
	for _, slot := range f.slots {
		if !slot.StartTime.Before(from) && !slot.EndTime.After(to) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) BlockRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, reason string, missing []repository.SlotInterval) error {
	for _, iv := range missing {
		r := reason
		f.slots[f.key(iv.Start, iv.End)] = &model.ScheduleSlot{
			Base:        model.Base{ID: uuid.New()},
			DoctorID:    doctorID,
			StartTime:   iv.Start,
			EndTime:     iv.End,
			Status:      model.SlotStatusBlocked,
			BlockReason: &r,
		}
	}
	for _, slot := range f.slots {
		if !slot.StartTime.Before(start) && !slot.EndTime.After(end) {
			r := reason
			slot.Status = model.SlotStatusBlocked
			slot.BlockReason = &r
		}
	}
	return nil
}

type fakeAppointmentRepo struct {
	activeDates []time.Time
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeAppointmentRepo) ListByPatient(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) ListByDoctor(ctx context.Context, id uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) error {
	return nil
}
func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	return nil
}
func (f *fakeAppointmentRepo) ActiveDatesInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	return f.activeDates, nil
}

func newTestService(t *testing.T) (*Service, uuid.UUID, *fakeSlotRepo, *fakeAppointmentRepo) {
	t.Helper()
	doctorID := uuid.New()
	slots := newFakeSlotRepo()
	appointments := &fakeAppointmentRepo{}
	users := &fakeUserRepo{doctors: map[uuid.UUID]bool{doctorID: true}}
	svc := NewService(slots, appointments, users, nil, config.ScheduleConfig{
		MaxRangeDays:    92,
		MaxSlotsPerCall: 5000,
	})
	return svc, doctorID, slots, appointments
}

func TestConfigureScheduleSingleDay(t *testing.T) {
	svc, doctorID, slots, _ := newTestService(t)

	result, err := svc.ConfigureSchedule(context.Background(), doctorID, &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "12:00",
	})
	require.NoError(t, err)

	// 3 hours at the default 30 minutes.
	assert.Equal(t, 6, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Skipped)
	assert.Len(t, slots.slots, 6)
}

func TestConfigureScheduleCustomSlotSize(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)

	result, err := svc.ConfigureSchedule(context.Background(), doctorID, &model.ConfigureScheduleRequest{
		Date:        "2026-03-10",
		StartHour:   "09:00",
		EndHour:     "10:00",
		SlotMinutes: 45,
	})
	require.NoError(t, err)

	// The trailing 15 minutes never become a slot.
	assert.Equal(t, 1, result.Created)
}

func TestConfigureScheduleRange(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)

	result, err := svc.ConfigureSchedule(context.Background(), doctorID, &model.ConfigureScheduleRequest{
		From:      "2026-03-09",
		To:        "2026-03-12",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	require.NoError(t, err)

	// 3 days (half-open range), 2 slots each.
	assert.Equal(t, 6, result.Created)
}

func TestConfigureScheduleOverwriteReopens(t *testing.T) {
	svc, doctorID, slots, _ := newTestService(t)
	req := &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "10:00",
	}

	first, err := svc.ConfigureSchedule(context.Background(), doctorID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	for _, slot := range slots.slots {
		reason := "holiday"
		slot.Status = model.SlotStatusBlocked
		slot.BlockReason = &reason
	}

	second, err := svc.ConfigureSchedule(context.Background(), doctorID, req)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Updated)

	for _, slot := range slots.slots {
		assert.Equal(t, model.SlotStatusAvailable, slot.Status)
		assert.Nil(t, slot.BlockReason)
	}
}

func TestConfigureScheduleNoOverwriteSkips(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)
	overwrite := false
	req := &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "10:00",
		Overwrite: &overwrite,
	}

	_, err := svc.ConfigureSchedule(context.Background(), doctorID, req)
	require.NoError(t, err)

	second, err := svc.ConfigureSchedule(context.Background(), doctorID, req)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 2, second.Skipped)
}

func TestConfigureScheduleValidation(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.ConfigureScheduleRequest
	}{
		{
			name: "no span",
			req:  &model.ConfigureScheduleRequest{StartHour: "09:00", EndHour: "10:00"},
		},
		{
			name: "inverted hours",
			req:  &model.ConfigureScheduleRequest{Date: "2026-03-10", StartHour: "12:00", EndHour: "09:00"},
		},
		{
			name: "inverted range",
			req:  &model.ConfigureScheduleRequest{From: "2026-03-12", To: "2026-03-10", StartHour: "09:00", EndHour: "10:00"},
		},
		{
			name: "bad hour",
			req:  &model.ConfigureScheduleRequest{Date: "2026-03-10", StartHour: "26:00", EndHour: "27:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ConfigureSchedule(ctx, doctorID, tt.req)
			assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
		})
	}
}

func TestConfigureScheduleUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ConfigureSchedule(context.Background(), uuid.New(), &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestConfigureScheduleRangeGuards(t *testing.T) {
	doctorID := uuid.New()
	users := &fakeUserRepo{doctors: map[uuid.UUID]bool{doctorID: true}}
	svc := NewService(newFakeSlotRepo(), &fakeAppointmentRepo{}, users, nil, config.ScheduleConfig{
		MaxRangeDays:    5,
		MaxSlotsPerCall: 8,
	})

	_, err := svc.ConfigureSchedule(context.Background(), doctorID, &model.ConfigureScheduleRequest{
		From:      "2026-03-01",
		To:        "2026-03-20",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))

	// 5 days of 2 slots exceeds the 8-slot cap before any write happens.
	_, err = svc.ConfigureSchedule(context.Background(), doctorID, &model.ConfigureScheduleRequest{
		From:      "2026-03-01",
		To:        "2026-03-06",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestBlockRangeCreatesMissingAndBlocksExisting(t *testing.T) {
	svc, doctorID, slots, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ConfigureSchedule(ctx, doctorID, &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	require.NoError(t, err)

	result, err := svc.BlockRange(ctx, doctorID, &model.BlockScheduleRequest{
		Start: "2026-03-10T09:00",
		End:   "2026-03-10T11:00",
	})
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	assert.Equal(t, start.Format(time.RFC3339), result.BlockedFrom)

	// Two pre-existing slots plus two gap-filled ones, all blocked.
	require.Len(t, slots.slots, 4)
	for _, slot := range slots.slots {
		assert.Equal(t, model.SlotStatusBlocked, slot.Status)
		require.NotNil(t, slot.BlockReason)
		assert.Equal(t, model.DefaultBlockReason, *slot.BlockReason)
	}
}

func TestBlockRangeCustomReason(t *testing.T) {
	svc, doctorID, slots, _ := newTestService(t)

	_, err := svc.BlockRange(context.Background(), doctorID, &model.BlockScheduleRequest{
		Start:  "2026-03-10T09:00",
		End:    "2026-03-10T10:00",
		Reason: "conference",
	})
	require.NoError(t, err)

	require.Len(t, slots.slots, 2)
	for _, slot := range slots.slots {
		require.NotNil(t, slot.BlockReason)
		assert.Equal(t, "conference", *slot.BlockReason)
	}
}

func TestBlockRangeRejectsInvertedRange(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)

	_, err := svc.BlockRange(context.Background(), doctorID, &model.BlockScheduleRequest{
		Start: "2026-03-10T10:00",
		End:   "2026-03-10T09:00",
	})
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestGetAvailabilityDerivesBooked(t *testing.T) {
	svc, doctorID, _, appointments := newTestService(t)
	ctx := context.Background()

	_, err := svc.ConfigureSchedule(ctx, doctorID, &model.ConfigureScheduleRequest{
		Date:      "2026-03-10",
		StartHour: "09:00",
		EndHour:   "10:00",
	})
	require.NoError(t, err)

	booked := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	appointments.activeDates = []time.Time{booked}

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	slots, err := svc.GetAvailability(ctx, doctorID, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, slots, 2)

	byStart := make(map[int64]model.SlotStatus)
	for _, s := range slots {
		byStart[s.Start.UnixNano()] = s.Status
	}
	assert.Equal(t, model.SlotStatusBooked, byStart[booked.UnixNano()])
	assert.Equal(t, model.SlotStatusAvailable, byStart[booked.Add(30*time.Minute).UnixNano()])
}

func TestGetAvailabilityBlockedWinsOverBooked(t *testing.T) {
	svc, doctorID, _, appointments := newTestService(t)
	ctx := context.Background()

	_, err := svc.BlockRange(ctx, doctorID, &model.BlockScheduleRequest{
		Start: "2026-03-10T09:00",
		End:   "2026-03-10T09:30",
	})
	require.NoError(t, err)

	// An appointment on a blocked slot does not flip it to BOOKED.
	appointments.activeDates = []time.Time{time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	slots, err := svc.GetAvailability(ctx, doctorID, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, model.SlotStatusBlocked, slots[0].Status)
}

func TestGetAvailabilityRejectsInvertedWindow(t *testing.T) {
	svc, doctorID, _, _ := newTestService(t)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	_, err := svc.GetAvailability(context.Background(), doctorID, from, from)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestBlockRangeSpanGuard(t *testing.T) {
	doctorID := uuid.New()
	users := &fakeUserRepo{doctors: map[uuid.UUID]bool{doctorID: true}}
	svc := NewService(newFakeSlotRepo(), &fakeAppointmentRepo{}, users, nil, config.ScheduleConfig{
		MaxRangeDays: 2,
	})

	_, err := svc.BlockRange(context.Background(), doctorID, &model.BlockScheduleRequest{
		Start: "2026-03-10",
		End:   "2026-03-20",
	})
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}
