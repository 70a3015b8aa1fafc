package ledger

import "time"

// DateLayout is the wire format for calendar days everywhere in the API.
const DateLayout = "2006-01-02"

// Clock resolves "today" in the one configured reference time zone. All day
// boundary decisions (item locking, suggestion targeting) must go through a
// single Clock instance, never through time.Now() directly.
type Clock struct {
	loc *time.Location
	now func() time.Time // overridable in tests
}

// NewClock creates a clock for loc; nil falls back to UTC.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// NewClockAt creates a clock whose "now" is frozen, for tests.
func NewClockAt(loc *time.Location, at time.Time) *Clock {
	c := NewClock(loc)
	c.now = func() time.Time { return at }
	return c
}

// Today returns the current calendar day in the reference zone.
func (c *Clock) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

// IsToday reports whether date equals the current reference calendar day.
func (c *Clock) IsToday(date string) bool {
	return date == c.Today()
}

// ValidDate reports whether date parses as YYYY-MM-DD.
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}
