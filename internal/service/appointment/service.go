package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
	"github.com/MedCore-Microservices/clinic-api/internal/service/event"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

// Service owns appointment writes. Booking is deliberately decoupled
// from the slot calendar: no slot-consistency check happens here, the
// schedule service reconciles occupancy at read time.
type Service struct {
	repo   repository.AppointmentRepository
	users  repository.UserRepository
	events event.Emitter
}

func NewService(repo repository.AppointmentRepository, users repository.UserRepository, events event.Emitter) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		events: events,
	}
}

// CreateAppointmentInput carries resolved booking fields.
type CreateAppointmentInput struct {
	PatientID        uuid.UUID
	DoctorID         *uuid.UUID
	SpecializationID *uuid.UUID
	MedicalRecordID  *uuid.UUID
	Date             time.Time
	Reason           string
}

func (s *Service) Create(ctx context.Context, input *CreateAppointmentInput) (*model.Appointment, error) {
	if _, err := s.users.GetByIDAndRole(ctx, input.PatientID, model.UserRolePatient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	if input.DoctorID != nil {
		if _, err := s.users.GetByIDAndRole(ctx, *input.DoctorID, model.UserRoleDoctor); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor", err)
			}
			return nil, fmt.Errorf("failed to look up doctor: %w", err)
		}
	}

	apt := &model.Appointment{
		UserID:           input.PatientID,
		DoctorID:         input.DoctorID,
		SpecializationID: input.SpecializationID,
		MedicalRecordID:  input.MedicalRecordID,
		Date:             input.Date,
		Reason:           input.Reason,
		Status:           model.AppointmentStatusPending,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentCreated, apt)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

// Update is the relaxed patch path: a supplied status must be a valid
// lifecycle value but is written without consulting the transition
// table. Lifecycle actions use Transition instead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	if patch.Status != nil {
		normalized := NormalizeStatus(*patch.Status)
		if !IsValidStatus(normalized) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *patch.Status), nil)
		}
		patch.Status = &normalized
	}

	if patch.DoctorID != nil {
		if _, err := s.users.GetByIDAndRole(ctx, *patch.DoctorID, model.UserRoleDoctor); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor", err)
			}
			return nil, fmt.Errorf("failed to look up doctor: %w", err)
		}
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventAppointmentUpdated, apt)
	return apt, nil
}

// Transition is the guarded path: the target must be reachable from the
// current status per the lifecycle table.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target = NormalizeStatus(target)
	if err := ValidateTransition(apt.Status, target); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to transition appointment: %w", err)
	}

	apt.Status = target
	s.emit(ctx, model.EventAppointmentTransition, apt)
	return apt, nil
}

// ForceCancel sets status to CANCELLED unconditionally, bypassing the
// transition table. Cancelling an already-terminal appointment succeeds;
// this is the one sanctioned bypass and callers rely on it.
func (s *Service) ForceCancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := s.repo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventAppointmentCancelled, apt)
	return apt, nil
}

func (s *Service) emit(ctx context.Context, eventType string, apt *model.Appointment) {
	if s.events == nil {
		return
	}
	_ = s.events.Emit(ctx, eventType, apt)
}
