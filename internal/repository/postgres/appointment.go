package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, doctor_id, specialization_id, medical_record_id,
			date, reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.DoctorID,
		appointment.SpecializationID,
		appointment.MedicalRecordID,
		appointment.Date,
		appointment.Reason,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.doctor_id, a.specialization_id,
			   a.medical_record_id, a.date, a.reason, a.status,
			   a.created_at, a.updated_at,
			   p.id AS "patient.id", p.full_name AS "patient.full_name", p.email AS "patient.email",
			   COALESCE(d.id::text, '') AS "doctor.id",
			   COALESCE(d.full_name, '') AS "doctor.full_name",
			   COALESCE(d.email, '') AS "doctor.email"
		FROM appointments a
		JOIN users p ON p.id = a.user_id
		LEFT JOIN users d ON d.id = a.doctor_id
		WHERE a.id = $1
	`
	var row appointmentRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.doctor_id, a.specialization_id,
			   a.medical_record_id, a.date, a.reason, a.status,
			   a.created_at, a.updated_at,
			   p.id AS "patient.id", p.full_name AS "patient.full_name", p.email AS "patient.email",
			   COALESCE(d.id::text, '') AS "doctor.id",
			   COALESCE(d.full_name, '') AS "doctor.full_name",
			   COALESCE(d.email, '') AS "doctor.email"
		FROM appointments a
		JOIN users p ON p.id = a.user_id
		LEFT JOIN users d ON d.id = a.doctor_id
		WHERE a.user_id = $1
		ORDER BY a.date DESC
	`
	return r.list(ctx, query, patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.doctor_id, a.specialization_id,
			   a.medical_record_id, a.date, a.reason, a.status,
			   a.created_at, a.updated_at,
			   p.id AS "patient.id", p.full_name AS "patient.full_name", p.email AS "patient.email",
			   COALESCE(d.id::text, '') AS "doctor.id",
			   COALESCE(d.full_name, '') AS "doctor.full_name",
			   COALESCE(d.email, '') AS "doctor.email"
		FROM appointments a
		JOIN users p ON p.id = a.user_id
		LEFT JOIN users d ON d.id = a.doctor_id
		WHERE a.doctor_id = $1
		ORDER BY a.date DESC
	`
	return r.list(ctx, query, doctorID)
}

func (r *appointmentRepository) list(ctx context.Context, query string, arg interface{}) ([]*model.Appointment, error) {
	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for i := range rows {
		appointments = append(appointments, rows[i].toModel())
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) error {
	query := "UPDATE appointments SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
		argCount++
	}

	if patch.DoctorID != nil {
		appendSet("doctor_id", *patch.DoctorID)
	}
	if patch.SpecializationID != nil {
		appendSet("specialization_id", *patch.SpecializationID)
	}
	if patch.MedicalRecordID != nil {
		appendSet("medical_record_id", *patch.MedicalRecordID)
	}
	if patch.Date != nil {
		appendSet("date", *patch.Date)
	}
	if patch.Reason != nil {
		appendSet("reason", *patch.Reason)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) ActiveDatesInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT date
		FROM appointments
		WHERE doctor_id = $1
		AND date >= $2 AND date <= $3
		AND status != $4
	`
	var dates []time.Time
	err := r.db.SelectContext(ctx, &dates, query, doctorID, from, to, model.AppointmentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list active appointment dates: %w", err)
	}
	return dates, nil
}

// appointmentRow flattens the user joins for sqlx scanning.
type appointmentRow struct {
	model.Appointment
	PatientRef model.UserRef `db:"patient"`
	DoctorRef  model.UserRef `db:"doctor"`
}

func (row *appointmentRow) toModel() *model.Appointment {
	apt := row.Appointment
	patient := row.PatientRef
	apt.Patient = &patient
	if row.DoctorRef.ID != "" {
		doctor := row.DoctorRef
		apt.Doctor = &doctor
	}
	return &apt
}
