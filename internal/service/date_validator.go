package service

import "time"

// SchedulingWindowDays is how far ahead an appointment may be booked.
const SchedulingWindowDays = 30

// Clock returns the current time. Injected so the scheduling window can be tested.
type Clock func() time.Time

type DateValidator struct {
	clock Clock
}

func NewDateValidator(clock Clock) *DateValidator {
	if clock == nil {
		clock = time.Now
	}
	return &DateValidator{clock: clock}
}

// Validate reports whether date falls in [today, today+30 days], both ends inclusive.
// Only the calendar part of date is considered.
func (v *DateValidator) Validate(date time.Time) bool {
	now := v.clock()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	maxDate := today.AddDate(0, 0, SchedulingWindowDays)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())

	return !day.Before(today) && !day.After(maxDate)
}
