package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wennsouza/marcai-server/cmd/models"
)

// 2026-09-07 is a Monday.
const (
	monday  = "2026-09-07"
	tuesday = "2026-09-08"
)

func openWeek() []models.WeeklySchedule {
	return models.DefaultWeeklySchedule(1)
}

func refTime(t *testing.T, date, clock string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(ReferenceTimezone)
	require.NoError(t, err)
	ts, err := time.ParseInLocation(DateLayout+" 15:04", date+" "+clock, loc)
	require.NoError(t, err)
	return ts
}

func TestComputeSlots(t *testing.T) {
	// Reference now is midnight the day before target unless a test overrides it.
	past := refTime(t, "2026-09-01", "00:00")

	tests := []struct {
		name     string
		week     []models.WeeklySchedule
		specials []models.SpecialDate
		services []models.Service
		date     string
		duration int
		booked   []models.Appointment
		now      time.Time
		expected []string
	}{
		{
			name: "disabled weekday yields nothing",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: false, Start: "09:00", End: "18:00"},
			},
			date:     monday,
			duration: 30,
			now:      past,
			expected: nil,
		},
		{
			name:     "missing weekday entry treated as closed",
			week:     []models.WeeklySchedule{{Day: 2, Enabled: true, Start: "09:00", End: "12:00"}},
			date:     monday,
			duration: 30,
			now:      past,
			expected: nil,
		},
		{
			name: "special closure wins over enabled weekday",
			week: openWeek(),
			specials: []models.SpecialDate{
				{Date: monday, Closed: true, Note: "feriado"},
			},
			date:     monday,
			duration: 60,
			now:      past,
			expected: nil,
		},
		{
			name: "special override replaces start and end only",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:00", End: "18:00", LunchEnabled: true, LunchStart: "12:00", LunchEnd: "13:00"},
			},
			specials: []models.SpecialDate{
				{Date: monday, Start: "11:00", End: "14:00"},
			},
			date:     monday,
			duration: 60,
			now:      past,
			// 12:00 and 12:30 fall inside the weekday lunch, which the
			// override does not touch; 11:00 and 13:00 remain.
			expected: []string{"11:00", "13:00"},
		},
		{
			name: "lunch excludes candidates starting inside the window",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:00", End: "12:00", LunchEnabled: true, LunchStart: "10:00", LunchEnd: "10:30"},
			},
			date:     monday,
			duration: 30,
			now:      past,
			expected: []string{"09:00", "09:30", "10:30", "11:00", "11:30"},
		},
		{
			name: "booked appointment excludes overlapping candidates",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:00", End: "11:00"},
			},
			services: []models.Service{{Name: "Barba Completa", Duration: 30}},
			date:     monday,
			duration: 15,
			booked: []models.Appointment{
				{Date: monday, Time: "10:00", ServiceName: "Barba Completa", Status: models.StatusConfirmed},
			},
			now: past,
			// [10:00,10:30) is occupied; 09:45+15 ends 10:00 so it survives,
			// 10:30 starts exactly at the appointment end so it survives too.
			expected: []string{"09:00", "09:15", "09:30", "09:45", "10:30", "10:45"},
		},
		{
			name: "partial overlap at both ends is rejected",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:15", End: "11:00"},
			},
			services: []models.Service{{Name: "Barba Completa", Duration: 30}},
			date:     monday,
			duration: 30,
			booked: []models.Appointment{
				{Date: monday, Time: "10:00", ServiceName: "Barba Completa", Status: models.StatusPending},
			},
			now: past,
			// [09:45,10:15) and [10:15,10:45) both intersect [10:00,10:30).
			expected: []string{"09:15", "10:45"},
		},
		{
			name: "cancelled appointment frees its slot",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:00", End: "10:00"},
			},
			services: []models.Service{{Name: "Corte Masculino", Duration: 30}},
			date:     monday,
			duration: 30,
			booked: []models.Appointment{
				{Date: monday, Time: "09:00", ServiceName: "Corte Masculino", Status: models.StatusCancelled},
			},
			now:      past,
			expected: []string{"09:00", "09:30"},
		},
		{
			name: "unresolvable service name defaults to 30 minutes",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "09:00", End: "10:30"},
			},
			services: []models.Service{{Name: "Corte Masculino", Duration: 60}},
			date:     monday,
			duration: 30,
			booked: []models.Appointment{
				{Date: monday, Time: "09:00", ServiceName: "Serviço Antigo", Status: models.StatusPending},
			},
			now:      past,
			expected: []string{"09:30", "10:00"},
		},
		{
			name: "past exclusion applies only to today",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "14:00", End: "15:00"},
				{Day: 2, Enabled: true, Start: "14:00", End: "15:00"},
			},
			date:     tuesday,
			duration: 30,
			now:      refTime(t, monday, "14:05"),
			expected: []string{"14:00", "14:30"},
		},
		{
			name: "slot starting at the current minute is excluded",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "14:00", End: "15:30"},
			},
			date:     monday,
			duration: 30,
			now:      refTime(t, monday, "14:30"),
			expected: []string{"15:00"},
		},
		{
			name: "slot start bounded by closing but end is not clipped",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "16:00", End: "18:00"},
			},
			date:     monday,
			duration: 90,
			now:      past,
			// 17:30 + 90min runs past closing yet is still offered; only the
			// start is checked against the end boundary.
			expected: []string{"16:00", "17:30"},
		},
		{
			name: "malformed schedule times degrade to midnight",
			week: []models.WeeklySchedule{
				{Day: 1, Enabled: true, Start: "garbage", End: "01:00"},
			},
			date:     monday,
			duration: 30,
			now:      past,
			expected: []string{"00:00", "00:30"},
		},
		{
			name:     "zero duration yields nothing",
			week:     openWeek(),
			date:     monday,
			duration: 0,
			now:      past,
			expected: nil,
		},
		{
			name:     "malformed date yields nothing",
			week:     openWeek(),
			date:     "07/09/2026",
			duration: 30,
			now:      past,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSlots(tt.week, tt.specials, tt.services, tt.date, tt.duration, tt.booked, tt.now)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeSlotsFullDayScenario(t *testing.T) {
	// Monday 09:00-18:00 with lunch 12:00-13:00, hour-long service, empty
	// calendar, reference clock at midnight of the target day.
	week := openWeek()
	now := refTime(t, monday, "00:00")

	got := ComputeSlots(week, nil, nil, monday, 60, nil, now)

	assert.Equal(t, []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, got)
}

func TestComputeSlotsOrderedAscending(t *testing.T) {
	week := openWeek()
	got := ComputeSlots(week, nil, nil, monday, 45, nil, refTime(t, "2026-09-01", "00:00"))

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}

func TestComputeSlotsIdempotent(t *testing.T) {
	week := openWeek()
	services := []models.Service{{Name: "Coloração", Duration: 60}}
	booked := []models.Appointment{
		{Date: monday, Time: "10:00", ServiceName: "Coloração", Status: models.StatusConfirmed},
	}
	now := refTime(t, monday, "09:20")

	first := ComputeSlots(week, nil, services, monday, 30, booked, now)
	second := ComputeSlots(week, nil, services, monday, 30, booked, now)

	assert.Equal(t, first, second)
}

func TestMinutesFromMidnight(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"09:00", 540},
		{"00:00", 0},
		{"23:59", 1439},
		{"9:5", 545},
		{"", 0},
		{"nine", 0},
		{"ab:cd", 0},
		{"12:xx", 720},
		{"xx:30", 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, minutesFromMidnight(tt.input), "input %q", tt.input)
	}
}
