package device

import (
	"strings"
	"sync"
	"time"
)

// timeLayout is the stored form of lastBookedTime. The fixed-width
// fraction keeps stored strings ordered for a single offset.
const timeLayout = "2006-01-02T15:04:05.000000000-07:00"

// Clock issues booking timestamps in one reference timezone.
//
// Successive calls to Now never return the same or an earlier instant,
// even if the wall clock steps backwards.
type Clock struct {
	loc *time.Location
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewClock returns a Clock reading the wall clock in loc.
// A nil loc means UTC.
func NewClock(loc *time.Location) *Clock {
	return newClockWithSource(loc, time.Now)
}

func newClockWithSource(loc *time.Location, source func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: source}
}

// Location returns the reference timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the reference timezone, strictly after
// any value previously returned by this Clock.
func (c *Clock) Now() time.Time {
	t := c.now().In(c.loc).Round(0)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

// formatTime renders t in loc using the stored layout.
func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

// parseTime reads a stored lastBookedTime. Besides the current layout it
// accepts any RFC 3339 value, optionally followed by a bracketed zone id
// such as "+04:00[Asia/Dubai]".
func parseTime(s string) (time.Time, error) {
	if i := strings.IndexByte(s, '['); i > 0 && strings.HasSuffix(s, "]") {
		s = s[:i]
	}
	return time.Parse(time.RFC3339Nano, s)
}
