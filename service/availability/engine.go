package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wennsouza/marcai-server/cmd/models"
)

// DefaultAppointmentDuration is the occupied interval assumed for a booked
// appointment whose service can no longer be resolved by name (renamed or
// deleted services).
const DefaultAppointmentDuration = 30

// DateLayout is the wire format for calendar dates throughout the API.
const DateLayout = "2006-01-02"

// ReferenceTimezone is the single canonical zone for "is this slot in the
// past" decisions, regardless of the client device's locale.
const ReferenceTimezone = "America/Sao_Paulo"

type interval struct {
	start, end int // minutes from midnight, half-open [start, end)
}

func (a interval) overlaps(b interval) bool {
	return a.start < b.end && a.end > b.start
}

// ComputeSlots returns the bookable "HH:MM" start times for a professional on
// the given date, ascending. It is a total function over its inputs: malformed
// time strings degrade to 00:00 and missing data yields an empty result, never
// an error. The reference clock must already be in the reference timezone.
//
// Rules, highest priority first: a closed SpecialDate for the exact date wins
// over everything; an open SpecialDate overrides only start/end (lunch still
// comes from the weekday row); a missing or disabled weekday row means closed.
// Candidates step from start by serviceDuration while the start itself is
// before closing; a candidate whose end runs past closing is still emitted
// (the loop bounds the start, not the end). Candidates are dropped when they
// start inside the lunch window, when they are not after "now" on today's
// date, or when they overlap a non-cancelled appointment's occupied interval.
func ComputeSlots(
	week []models.WeeklySchedule,
	specials []models.SpecialDate,
	services []models.Service,
	date string,
	serviceDuration int,
	booked []models.Appointment,
	now time.Time,
) []string {
	if serviceDuration <= 0 {
		return nil
	}

	day, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return nil
	}

	var special *models.SpecialDate
	for i := range specials {
		if specials[i].Date == date {
			special = &specials[i]
			break
		}
	}
	if special != nil && special.Closed {
		return nil
	}

	var sched *models.WeeklySchedule
	weekday := int(day.Weekday())
	for i := range week {
		if week[i].Day == weekday {
			sched = &week[i]
			break
		}
	}
	if sched == nil || !sched.Enabled {
		return nil
	}

	start := minutesFromMidnight(sched.Start)
	end := minutesFromMidnight(sched.End)
	if special != nil {
		if special.Start != "" {
			start = minutesFromMidnight(special.Start)
		}
		if special.End != "" {
			end = minutesFromMidnight(special.End)
		}
	}

	lunch := interval{}
	if sched.LunchEnabled {
		lunch = interval{
			start: minutesFromMidnight(sched.LunchStart),
			end:   minutesFromMidnight(sched.LunchEnd),
		}
	}

	isToday := now.Format(DateLayout) == date
	nowMinute := now.Hour()*60 + now.Minute()

	occupied := occupiedIntervals(booked, services, date)

	var slots []string
	for t := start; t < end; t += serviceDuration {
		if sched.LunchEnabled && t >= lunch.start && t < lunch.end {
			continue
		}
		if isToday && t <= nowMinute {
			continue
		}

		candidate := interval{start: t, end: t + serviceDuration}
		conflict := false
		for _, iv := range occupied {
			if candidate.overlaps(iv) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		slots = append(slots, formatMinutes(t))
	}
	return slots
}

// occupiedIntervals maps non-cancelled appointments on the date to their
// occupied intervals. Durations resolve by service name; two services sharing
// a name are indistinguishable here, the later one wins.
func occupiedIntervals(booked []models.Appointment, services []models.Service, date string) []interval {
	durations := make(map[string]int, len(services))
	for _, s := range services {
		durations[s.Name] = s.Duration
	}

	var occupied []interval
	for _, a := range booked {
		if a.Status == models.StatusCancelled || a.Date != date {
			continue
		}
		duration, ok := durations[a.ServiceName]
		if !ok || duration <= 0 {
			duration = DefaultAppointmentDuration
		}
		start := minutesFromMidnight(a.Time)
		occupied = append(occupied, interval{start: start, end: start + duration})
	}
	return occupied
}

// minutesFromMidnight parses "HH:MM" into minutes past midnight. Missing
// separators or non-numeric parts count as zero; it never fails.
func minutesFromMidnight(s string) int {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) < 2 {
		return 0
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		hour = 0
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		minute = 0
	}
	return hour*60 + minute
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
