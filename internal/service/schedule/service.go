package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/MedCore-Microservices/clinic-api/internal/config"
	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/repository"
	"github.com/MedCore-Microservices/clinic-api/internal/service/event"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

const (
	// DefaultSlotMinutes is the slot length when a request leaves it unset.
	DefaultSlotMinutes = 30

	// blockSlotMinutes is the fixed granularity at which BlockRange
	// gap-fills missing slots, independent of how the schedule was
	// originally configured. The bulk-blocking step afterwards marks
	// every in-range slot regardless of granularity, so blocking is
	// "mark everything in range" with best-effort 30-minute gap filling.
	blockSlotMinutes = 30

	doctorCacheTTL     = 5 * time.Minute
	doctorCacheCleanup = 10 * time.Minute
)

// Service generates, blocks and reports per-doctor slot availability.
// BLOCKED status is authoritative and stored; BOOKED is always derived
// at read time from the appointment join.
type Service struct {
	slots        repository.ScheduleRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	events       event.Emitter
	limits       config.ScheduleConfig
	doctorCache  *gocache.Cache
}

func NewService(
	slots repository.ScheduleRepository,
	appointments repository.AppointmentRepository,
	users repository.UserRepository,
	events event.Emitter,
	limits config.ScheduleConfig,
) *Service {
	return &Service{
		slots:        slots,
		appointments: appointments,
		users:        users,
		events:       events,
		limits:       limits,
		doctorCache:  gocache.New(doctorCacheTTL, doctorCacheCleanup),
	}
}

// ensureDoctorExists verifies the id references a doctor-role user.
// Lookups are cached; every schedule operation starts with one.
func (s *Service) ensureDoctorExists(ctx context.Context, doctorID uuid.UUID) error {
	if _, found := s.doctorCache.Get(doctorID.String()); found {
		return nil
	}

	_, err := s.users.GetByIDAndRole(ctx, doctorID, model.UserRoleDoctor)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return fmt.Errorf("failed to look up doctor: %w", err)
	}

	s.doctorCache.SetDefault(doctorID.String(), struct{}{})
	return nil
}

// ConfigureSchedule generates AVAILABLE slots for each day in the
// requested span. Existing identical slots are reopened when overwrite
// is enabled, skipped otherwise.
func (s *Service) ConfigureSchedule(ctx context.Context, doctorID uuid.UUID, req *model.ConfigureScheduleRequest) (*model.ConfigureScheduleResult, error) {
	if err := s.ensureDoctorExists(ctx, doctorID); err != nil {
		return nil, err
	}

	slotMinutes := req.SlotMinutes
	if slotMinutes == 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if slotMinutes < 0 {
		return nil, apperrors.InvalidInput("slot_minutes must be positive", nil)
	}

	overwrite := true
	if req.Overwrite != nil {
		overwrite = *req.Overwrite
	}

	spanStart, spanEnd, err := resolveSpan(req)
	if err != nil {
		return nil, err
	}

	dayMinutes, err := MinutesBetween(req.StartHour, req.EndHour)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}
	if dayMinutes <= 0 {
		return nil, apperrors.InvalidInput("end_hour must be later than start_hour", nil)
	}

	if err := s.guardRange(spanStart, spanEnd, dayMinutes/slotMinutes); err != nil {
		return nil, err
	}

	var candidates []repository.SlotInterval
	for cursor := spanStart; cursor.Before(spanEnd); cursor = NextDay(cursor) {
		dayStart, err := CombineHourMinute(cursor, req.StartHour)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error(), err)
		}
		dayEnd, err := CombineHourMinute(cursor, req.EndHour)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error(), err)
		}
		candidates = append(candidates, walkSlots(dayStart, dayEnd, slotMinutes)...)
	}

	result := &model.ConfigureScheduleResult{}
	for _, iv := range candidates {
		slot := &model.ScheduleSlot{
			DoctorID:  doctorID,
			StartTime: iv.Start,
			EndTime:   iv.End,
			Status:    model.SlotStatusAvailable,
		}

		err := s.slots.Insert(ctx, slot)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, repository.ErrDuplicateSlot):
			if !overwrite {
				result.Skipped++
				continue
			}
			if err := s.slots.Reopen(ctx, doctorID, iv.Start, iv.End); err != nil {
				// The duplicate vanished between insert and reopen;
				// another writer owns it now.
				if errors.Is(err, repository.ErrNotFound) {
					result.Skipped++
					continue
				}
				return nil, fmt.Errorf("failed to reopen slot: %w", err)
			}
			result.Updated++
		default:
			return nil, fmt.Errorf("failed to persist slot: %w", err)
		}
	}

	s.emit(ctx, model.EventScheduleConfigured, map[string]interface{}{
		"doctor_id": doctorID,
		"created":   result.Created,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
	})

	return result, nil
}

// BlockRange marks every slot inside [start, end) as BLOCKED, creating
// missing 30-minute slots first. Both writes run in one transaction.
func (s *Service) BlockRange(ctx context.Context, doctorID uuid.UUID, req *model.BlockScheduleRequest) (*model.BlockScheduleResult, error) {
	if err := s.ensureDoctorExists(ctx, doctorID); err != nil {
		return nil, err
	}

	start, err := ParseInstant(req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}
	end, err := ParseInstant(req.End)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end must be after start", nil)
	}

	if s.limits.MaxRangeDays > 0 {
		maxSpan := time.Duration(s.limits.MaxRangeDays) * 24 * time.Hour
		if end.Sub(start) > maxSpan {
			return nil, apperrors.InvalidInput(
				fmt.Sprintf("range exceeds the maximum of %d days", s.limits.MaxRangeDays), nil)
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = model.DefaultBlockReason
	}

	existing, err := s.slots.ListRange(ctx, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots in range: %w", err)
	}

	taken := make(map[int64]time.Time, len(existing))
	for _, slot := range existing {
		taken[slot.StartTime.UnixNano()] = slot.EndTime
	}

	var missing []repository.SlotInterval
	for _, iv := range walkSlots(start, end, blockSlotMinutes) {
		if endTime, ok := taken[iv.Start.UnixNano()]; ok && endTime.Equal(iv.End) {
			continue
		}
		missing = append(missing, iv)
	}

	if err := s.slots.BlockRange(ctx, doctorID, start, end, reason, missing); err != nil {
		return nil, fmt.Errorf("failed to block range: %w", err)
	}

	s.emit(ctx, model.EventScheduleBlocked, map[string]interface{}{
		"doctor_id": doctorID,
		"start":     start,
		"end":       end,
		"reason":    reason,
	})

	return &model.BlockScheduleResult{
		BlockedFrom: start.Format(time.RFC3339),
		BlockedTo:   end.Format(time.RFC3339),
	}, nil
}

// GetAvailability reports the derived status of each slot in [from, to]:
// BLOCKED as stored, otherwise BOOKED when a non-cancelled appointment
// starts exactly on the slot boundary, else AVAILABLE.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.AvailabilitySlot, error) {
	if err := s.ensureDoctorExists(ctx, doctorID); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from", nil)
	}

	slots, err := s.slots.ListRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	booked, err := s.appointments.ActiveDatesInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	bookedSet := make(map[int64]struct{}, len(booked))
	for _, d := range booked {
		bookedSet[d.UnixNano()] = struct{}{}
	}

	availability := make([]*model.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		status := slot.Status
		if status != model.SlotStatusBlocked {
			if _, ok := bookedSet[slot.StartTime.UnixNano()]; ok {
				status = model.SlotStatusBooked
			} else {
				status = model.SlotStatusAvailable
			}
		}

		availability = append(availability, &model.AvailabilitySlot{
			ID:          slot.ID,
			Start:       slot.StartTime,
			End:         slot.EndTime,
			Status:      status,
			BlockReason: slot.BlockReason,
		})
	}

	return availability, nil
}

// resolveSpan turns the date / from+to request fields into a half-open
// day span, each day re-anchored to local midnight by the caller's walk.
func resolveSpan(req *model.ConfigureScheduleRequest) (time.Time, time.Time, error) {
	if req.Date != "" {
		d, err := ParseInstant(req.Date)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error(), err)
		}
		dayStart := StartOfDay(d)
		return dayStart, dayStart.AddDate(0, 0, 1), nil
	}

	if req.From != "" && req.To != "" {
		from, err := ParseInstant(req.From)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error(), err)
		}
		to, err := ParseInstant(req.To)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error(), err)
		}
		if !to.After(from) {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("to must be after from", nil)
		}
		return from, to, nil
	}

	return time.Time{}, time.Time{}, apperrors.InvalidInput("either date or from/to is required", nil)
}

// guardRange rejects spans whose slot-generation work would be unbounded.
func (s *Service) guardRange(spanStart, spanEnd time.Time, slotsPerDay int) error {
	days := 0
	for cursor := spanStart; cursor.Before(spanEnd); cursor = NextDay(cursor) {
		days++
		if s.limits.MaxRangeDays > 0 && days > s.limits.MaxRangeDays {
			return apperrors.InvalidInput(
				fmt.Sprintf("range exceeds the maximum of %d days", s.limits.MaxRangeDays), nil)
		}
	}

	if s.limits.MaxSlotsPerCall > 0 && days*slotsPerDay > s.limits.MaxSlotsPerCall {
		return apperrors.InvalidInput(
			fmt.Sprintf("range would generate more than %d slots", s.limits.MaxSlotsPerCall), nil)
	}

	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	// Event emission is best effort; scheduling writes are already durable.
	_ = s.events.Emit(ctx, eventType, payload)
}
