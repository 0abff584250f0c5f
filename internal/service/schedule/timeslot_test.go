package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		fails bool
	}{
		{
			name:  "date only",
			input: "2026-03-10",
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local),
		},
		{
			name:  "date and minutes",
			input: "2026-03-10T09:30",
			want:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local),
		},
		{
			name:  "date and seconds",
			input: "2026-03-10T09:30:15",
			want:  time.Date(2026, 3, 10, 9, 30, 15, 0, time.Local),
		},
		{
			name:  "garbage",
			input: "10/03/2026",
			fails: true,
		},
		{
			name:  "empty",
			input: "",
			fails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestCombineHourMinute(t *testing.T) {
	day := time.Date(2026, 3, 10, 17, 45, 3, 0, time.Local)

	got, err := CombineHourMinute(day, "08:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local), got)

	_, err = CombineHourMinute(day, "25:00")
	assert.Error(t, err)

	_, err = CombineHourMinute(day, "08:61")
	assert.Error(t, err)

	_, err = CombineHourMinute(day, "0830")
	assert.Error(t, err)
}

func TestMinutesBetween(t *testing.T) {
	minutes, err := MinutesBetween("09:00", "12:30")
	require.NoError(t, err)
	assert.Equal(t, 210, minutes)

	minutes, err = MinutesBetween("12:00", "09:00")
	require.NoError(t, err)
	assert.Equal(t, -180, minutes)
}

func TestWalkSlots(t *testing.T) {
	dayStart := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	dayEnd := time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

	slots := walkSlots(dayStart, dayEnd, 30)
	require.Len(t, slots, 2)
	assert.Equal(t, dayStart, slots[0].Start)
	assert.Equal(t, dayStart.Add(30*time.Minute), slots[0].End)
	assert.Equal(t, dayEnd, slots[1].End)
}

func TestWalkSlotsDropsTrailingPartial(t *testing.T) {
	dayStart := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	dayEnd := time.Date(2026, 3, 10, 10, 10, 0, 0, time.Local)

	// 70 minutes at 30-minute steps: the last 10 minutes never become a slot.
	slots := walkSlots(dayStart, dayEnd, 30)
	require.Len(t, slots, 2)
	assert.Equal(t, dayStart.Add(60*time.Minute), slots[1].End)
}

func TestWalkSlotsEmptyWindow(t *testing.T) {
	dayStart := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	assert.Empty(t, walkSlots(dayStart, dayStart, 30))
	assert.Empty(t, walkSlots(dayStart, dayStart.Add(20*time.Minute), 30))
}

func TestStartOfDayAndNextDay(t *testing.T) {
	at := time.Date(2026, 3, 10, 17, 45, 3, 12, time.Local)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), StartOfDay(at))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local), NextDay(at))
}
