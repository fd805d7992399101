package obfuscate

import "time"

// Calendar abstracts the civil-calendar arithmetic DateTimeModel needs to
// split a timestamp into a date part and a time-of-day part without
// hardcoding UTC, mirroring the original tool's injectable DateLUT
// (there a process-wide singleton; here an explicit dependency so tests
// can fix a timezone without mutating global state).
type Calendar interface {
	// StartOfDay returns the instant at which t's calendar day began, in
	// the calendar's own timezone.
	StartOfDay(t time.Time) time.Time
}

// UTCCalendar is a Calendar backed by the UTC timezone.
type UTCCalendar struct{}

func (UTCCalendar) StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
