package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle status of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed  AppointmentStatus = "CONFIRMED"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow     AppointmentStatus = "NO_SHOW"
)

// Appointment is a booked visit. Date is the start instant; cancellation
// is a status write, never a row deletion.
type Appointment struct {
	Base
	UserID           uuid.UUID         `db:"user_id" json:"user_id"`
	DoctorID         *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	SpecializationID *uuid.UUID        `db:"specialization_id" json:"specialization_id,omitempty"`
	MedicalRecordID  *uuid.UUID        `db:"medical_record_id" json:"medical_record_id,omitempty"`
	Date             time.Time         `db:"date" json:"date"`
	Reason           string            `db:"reason" json:"reason"`
	Status           AppointmentStatus `db:"status" json:"status"`

	Patient *UserRef `db:"-" json:"patient,omitempty"`
	Doctor  *UserRef `db:"-" json:"doctor,omitempty"`
}

// CreateAppointmentRequest books a visit. Date and Time are combined as
// "<date>T<time>" when both are present.
type CreateAppointmentRequest struct {
	PatientID        uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID         *uuid.UUID `json:"doctor_id"`
	SpecializationID *uuid.UUID `json:"specialization_id"`
	MedicalRecordID  *uuid.UUID `json:"medical_record_id"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Reason           string     `json:"reason" binding:"required"`
}

// UpdateAppointmentRequest is the generic field patch. A Status supplied
// here must be a valid value but is not checked against the transition
// table; lifecycle actions go through Transition instead.
type UpdateAppointmentRequest struct {
	DoctorID         *uuid.UUID         `json:"doctor_id"`
	SpecializationID *uuid.UUID         `json:"specialization_id"`
	MedicalRecordID  *uuid.UUID         `json:"medical_record_id"`
	Date             *string            `json:"date"`
	Time             *string            `json:"time"`
	Reason           *string            `json:"reason"`
	Status           *AppointmentStatus `json:"status"`
}

// AppointmentPatch carries resolved update fields into the repository.
type AppointmentPatch struct {
	DoctorID         *uuid.UUID
	SpecializationID *uuid.UUID
	MedicalRecordID  *uuid.UUID
	Date             *time.Time
	Reason           *string
	Status           *AppointmentStatus
}
