package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/KirkDiggler/remindme/internal/common/clock Clock
type Clock interface {
	Now() time.Time
}

// ZoneClock reports wall-clock time in a fixed location. Every "now" used to
// resolve reminder expressions comes from here.
type ZoneClock struct {
	loc *time.Location
}

// New returns a clock in loc. A nil location falls back to UTC.
func New(loc *time.Location) *ZoneClock {
	if loc == nil {
		loc = time.UTC
	}
	return &ZoneClock{loc: loc}
}

// Now returns the current time in the clock's location
func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the zone the clock reports in
func (c *ZoneClock) Location() *time.Location {
	return c.loc
}
