package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
)

// Sentinel errors surfaced by the storage layer. Services translate
// these into the application error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlot = errors.New("slot already exists for this doctor and interval")
)

// SlotInterval is one half-open candidate interval [Start, End).
type SlotInterval struct {
	Start time.Time
	End   time.Time
}

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		// GetByIDAndRole returns ErrNotFound when the user is absent or
		// carries a different role.
		GetByIDAndRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	}

	// ScheduleRepository persists the per-doctor slot calendar.
	ScheduleRepository interface {
		// Insert adds a new slot and returns ErrDuplicateSlot when a slot
		// with the same (doctor, start, end) already exists.
		Insert(ctx context.Context, slot *model.ScheduleSlot) error
		// Reopen flips an existing slot back to AVAILABLE and clears its
		// block reason. Returns ErrNotFound when no such slot exists.
		Reopen(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error
		// ListRange returns slots with start >= from and end <= to,
		// ordered by start ascending.
		ListRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.ScheduleSlot, error)
		// BlockRange creates the missing intervals as BLOCKED and bulk-marks
		// every existing in-range slot BLOCKED, inside one transaction.
		BlockRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, reason string, missing []SlotInterval) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		// ActiveDatesInRange returns the start instants of every
		// non-cancelled appointment for the doctor within [from, to].
		ActiveDatesInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)
	}

	TokenRepository interface {
		StoreVerificationToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
		ValidateVerificationToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateVerificationToken(ctx context.Context, token string) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
