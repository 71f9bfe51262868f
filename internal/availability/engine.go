// Package availability answers two questions about a professional's
// calendar: can a new booking window fit, and what does the calendar look
// like over a date range. It never mutates bookings; the requests module
// owns those.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"

	"github.com/google/uuid"
)

// MaxRangeDays caps schedule queries to keep calendar rendering bounded.
const MaxRangeDays = 30

// Slot statuses in a rendered calendar.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
	SlotCompleted = "completed"
)

// Booking is a time window a service request holds on a professional's
// calendar. Status is the request status, used to distinguish upcoming
// work from finished work when rendering calendars.
type Booking struct {
	RequestID      uuid.UUID
	ProfessionalID uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Status         string
}

// BookingSource supplies the bookings the engine reasons over. The requests
// repository implements it; tests substitute in-memory fixtures. An
// interval-indexed implementation can be swapped in without touching the
// engine.
type BookingSource interface {
	// ActiveBookings returns the professional's calendar-holding bookings
	// (assigned or in progress).
	ActiveBookings(ctx context.Context, professionalID uuid.UUID) ([]Booking, error)

	// BookingsInRange returns bookings overlapping [from, to), including
	// completed ones, for calendar rendering.
	BookingsInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Booking, error)
}

// Engine checks booking feasibility and renders schedules against a
// business-hours policy.
type Engine struct {
	source BookingSource
	policy config.BookingPolicy
}

// NewEngine creates an availability engine.
func NewEngine(source BookingSource, policy config.BookingPolicy) *Engine {
	return &Engine{source: source, policy: policy}
}

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back windows do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Check verifies the window [start, start+duration) does not overlap any of
// the professional's active bookings. On conflict it returns a ConflictError
// naming the first conflicting request.
func (e *Engine) Check(ctx context.Context, professionalID uuid.UUID, start time.Time, duration time.Duration) error {
	if duration <= 0 {
		return apperr.Validation("booking duration must be positive")
	}
	end := start.Add(duration)

	bookings, err := e.source.ActiveBookings(ctx, professionalID)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return apperr.Conflict("professional is already booked for this window").
				WithDetails(map[string]string{"conflictingRequestId": b.RequestID.String()})
		}
	}
	return nil
}

// TimeSlot is one fixed-duration slot in a rendered calendar. BookingRef is
// set when the slot is held by a request.
type TimeSlot struct {
	StartTime  time.Time  `json:"startTime"`
	EndTime    time.Time  `json:"endTime"`
	Status     string     `json:"status"`
	BookingRef *uuid.UUID `json:"bookingRef,omitempty"`
}

// DaySchedule is one calendar day of slots with tallies derived from the
// slot statuses.
type DaySchedule struct {
	Date      string     `json:"date"`
	Slots     []TimeSlot `json:"slots"`
	Available int        `json:"available"`
	Booked    int        `json:"booked"`
	Completed int        `json:"completed"`
}

// Schedule renders the professional's calendar for [from, to] (inclusive
// dates) as fixed slots between business open and close. A trailing window
// shorter than the slot duration is dropped. A slot overlapping a booking is
// marked booked, or completed when the underlying request finished.
func (e *Engine) Schedule(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slotDuration time.Duration) ([]DaySchedule, error) {
	if slotDuration <= 0 {
		slotDuration = e.policy.SlotDuration()
	}
	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)
	if toDay.Before(fromDay) {
		return nil, apperr.Validation("date range end before start")
	}
	if days := int(toDay.Sub(fromDay).Hours()/24) + 1; days > MaxRangeDays {
		return nil, apperr.Validation(fmt.Sprintf("date range cannot exceed %d days", MaxRangeDays))
	}

	rangeStart := fromDay.Add(e.policy.Open())
	rangeEnd := toDay.Add(e.policy.Close())
	bookings, err := e.source.BookingsInRange(ctx, professionalID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})

	var days []DaySchedule
	for d := fromDay; !d.After(toDay); d = d.AddDate(0, 0, 1) {
		days = append(days, e.renderDay(d, slotDuration, bookings))
	}
	return days, nil
}

func (e *Engine) renderDay(day time.Time, slotDuration time.Duration, bookings []Booking) DaySchedule {
	sched := DaySchedule{Date: day.Format("2006-01-02"), Slots: []TimeSlot{}}

	windowStart := day.Add(e.policy.Open())
	windowEnd := day.Add(e.policy.Close())

	for slotStart := windowStart; !slotStart.Add(slotDuration).After(windowEnd); slotStart = slotStart.Add(slotDuration) {
		slotEnd := slotStart.Add(slotDuration)

		slot := TimeSlot{StartTime: slotStart, EndTime: slotEnd, Status: SlotAvailable}
		for i := range bookings {
			b := &bookings[i]
			if !Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
				continue
			}
			if b.Status == "completed" {
				slot.Status = SlotCompleted
			} else {
				slot.Status = SlotBooked
			}
			slot.BookingRef = &b.RequestID
			break
		}

		switch slot.Status {
		case SlotAvailable:
			sched.Available++
		case SlotBooked:
			sched.Booked++
		case SlotCompleted:
			sched.Completed++
		}
		sched.Slots = append(sched.Slots, slot)
	}

	return sched
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
