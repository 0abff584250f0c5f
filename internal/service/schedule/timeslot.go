package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MedCore-Microservices/clinic-api/internal/repository"
)

// Accepted layouts for incoming instants. The clinic runs in a single
// local timezone, so bare layouts parse in time.Local.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-style date or date-time string.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q", s)
}

// CombineHourMinute anchors an "HH:mm" wall-clock time onto day's date.
func CombineHourMinute(day time.Time, hhmm string) (time.Time, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid hour %q", hhmm)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour %q", hhmm)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("hour %q out of range", hhmm)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns local midnight of the day after t.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// MinutesBetween returns the wall-clock minutes from startHour to
// endHour, both "HH:mm".
func MinutesBetween(startHour, endHour string) (int, error) {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := CombineHourMinute(base, startHour)
	if err != nil {
		return 0, err
	}
	e, err := CombineHourMinute(base, endHour)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s) / time.Minute), nil
}

// walkSlots emits consecutive [s, s+slotMinutes) intervals from dayStart,
// dropping a trailing partial slot that would overshoot dayEnd.
func walkSlots(dayStart, dayEnd time.Time, slotMinutes int) []repository.SlotInterval {
	var intervals []repository.SlotInterval
	step := time.Duration(slotMinutes) * time.Minute

	for s := dayStart; s.Before(dayEnd); s = s.Add(step) {
		e := s.Add(step)
		if e.After(dayEnd) {
			break
		}
		intervals = append(intervals, repository.SlotInterval{Start: s, End: e})
	}
	return intervals
}
