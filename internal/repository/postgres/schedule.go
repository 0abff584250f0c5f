package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
)

func (r *scheduleRepository) Insert(ctx context.Context, slot *model.ScheduleSlot) error {
	query := `
		INSERT INTO schedule_slots (
			id, doctor_id, start_time, end_time, status, block_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.BlockReason,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert schedule slot: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Reopen(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error {
	query := `
		UPDATE schedule_slots
		SET status = $1, block_reason = NULL, updated_at = NOW()
		WHERE doctor_id = $2 AND start_time = $3 AND end_time = $4
	`
	result, err := r.db.ExecContext(ctx, query, model.SlotStatusAvailable, doctorID, start, end)
	if err != nil {
		return fmt.Errorf("failed to reopen schedule slot: %w", err)
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

func (r *scheduleRepository) ListRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.ScheduleSlot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, status, block_reason,
			   created_at, updated_at
		FROM schedule_slots
		WHERE doctor_id = $1 AND start_time >= $2 AND end_time <= $3
		ORDER BY start_time ASC
	`
	var slots []*model.ScheduleSlot
	err := r.db.SelectContext(ctx, &slots, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}
	return slots, nil
}

// BlockRange runs the two-step blocking write atomically: first the
// missing candidate intervals are inserted as BLOCKED, then every
// existing slot contained in [start, end) is bulk-marked BLOCKED
// regardless of its previous status.
func (r *scheduleRepository) BlockRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, reason string, missing []repository.SlotInterval) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO schedule_slots (
				id, doctor_id, start_time, end_time, status, block_reason,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		`
		for _, iv := range missing {
			_, err := tx.ExecContext(ctx, insert,
				uuid.New(), doctorID, iv.Start, iv.End, model.SlotStatusBlocked, reason)
			if err != nil {
				return fmt.Errorf("failed to insert blocked slot: %w", err)
			}
		}

		bulk := `
			UPDATE schedule_slots
			SET status = $1, block_reason = $2, updated_at = NOW()
			WHERE doctor_id = $3 AND start_time >= $4 AND end_time <= $5
		`
		if _, err := tx.ExecContext(ctx, bulk, model.SlotStatusBlocked, reason, doctorID, start, end); err != nil {
			return fmt.Errorf("failed to block slots in range: %w", err)
		}

		return nil
	})
}
