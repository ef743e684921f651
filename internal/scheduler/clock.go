package scheduler

import "time"

// Clock abstracts time for the scanner so tests can pin the tick instant.
// Location defines the calendar-day boundary for all once-per-day
// semantics (schedule re-fire guard, overdue dedup).
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time { return time.Now().In(c.loc) }
func (c *systemClock) Location() *time.Location { return c.loc }

// dayStart truncates t to midnight in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// sameDay reports whether a and b fall on the same calendar day in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	return dayStart(a, loc).Equal(dayStart(b, loc))
}

// dayKey renders the calendar day of t in loc, for dedup keys.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
