package model

import (
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the stored status of a schedule slot. BLOCKED is
// authoritative; BOOKED never hits storage — it is derived at read time
// from the appointment join (see schedule.Service.GetAvailability).
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBlocked   SlotStatus = "BLOCKED"
	SlotStatusBooked    SlotStatus = "BOOKED"
)

// DefaultBlockReason is applied when a range is blocked without a reason.
const DefaultBlockReason = "Bloqueado"

// ScheduleSlot is one fixed-size interval of a doctor's calendar.
// (DoctorID, StartTime, EndTime) is unique; EndTime > StartTime.
type ScheduleSlot struct {
	Base
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	StartTime   time.Time  `db:"start_time" json:"start"`
	EndTime     time.Time  `db:"end_time" json:"end"`
	Status      SlotStatus `db:"status" json:"status"`
	BlockReason *string    `db:"block_reason" json:"block_reason,omitempty"`
}

// ConfigureScheduleRequest configures a doctor's working hours for a
// single date or a date range. Exactly one of Date or From/To is required.
type ConfigureScheduleRequest struct {
	Date        string `json:"date"`
	From        string `json:"from"`
	To          string `json:"to"`
	StartHour   string `json:"start_hour" binding:"required,hhmm"`
	EndHour     string `json:"end_hour" binding:"required,hhmm"`
	SlotMinutes int    `json:"slot_minutes"`
	Overwrite   *bool  `json:"overwrite"`
}

// ConfigureScheduleResult reports what the write pass did. Skipped counts
// existing slots left untouched because overwrite was disabled.
type ConfigureScheduleResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// BlockScheduleRequest marks every slot inside [Start, End) as blocked.
type BlockScheduleRequest struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Reason string `json:"reason"`
}

// BlockScheduleResult echoes the blocked range.
type BlockScheduleResult struct {
	BlockedFrom string `json:"blocked_from"`
	BlockedTo   string `json:"blocked_to"`
}

// AvailabilitySlot is the derived read-time view of a slot.
type AvailabilitySlot struct {
	ID          uuid.UUID  `json:"id"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Status      SlotStatus `json:"status"`
	BlockReason *string    `json:"block_reason,omitempty"`
}
