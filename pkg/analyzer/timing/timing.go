// Package timing computes the time a thread took to reach effective resolution.
package timing

import (
	"time"

	"github.com/panbanda/edslo/pkg/models"
)

// DefaultTimezone is the zone used for weekday arithmetic when none is configured.
const DefaultTimezone = "America/New_York"

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// epoch is a Monday 00:00; weekend time is counted from here.
var epoch = time.Date(1970, time.January, 5, 0, 0, 0, 0, time.UTC)

// DefaultLocation loads DefaultTimezone, falling back to UTC when the
// timezone database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Calculator computes elapsed hours between a question and its resolving answer.
type Calculator struct {
	skipWeekends bool
	loc          *time.Location
}

// Option is a functional option for configuring Calculator.
type Option func(*Calculator)

// WithSkipWeekends excludes Saturday and Sunday from elapsed time.
func WithSkipWeekends(skip bool) Option {
	return func(c *Calculator) {
		c.skipWeekends = skip
	}
}

// WithLocation sets the zone that decides where calendar days begin.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// New creates a new calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{loc: DefaultLocation()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the zone used for weekday arithmetic.
func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Elapsed returns the hours from thread creation to the resolving answer.
// It returns nil when answer is nil. A negative span is clamped to zero and
// reported as anomalous.
func (c *Calculator) Elapsed(thread models.Thread, answer *models.Answer) (hours *float64, anomalous bool) {
	if answer == nil {
		return nil, false
	}

	raw := answer.CreatedAt.Sub(thread.CreatedAt)
	if raw < 0 {
		zero := 0.0
		return &zero, true
	}

	d := raw
	if c.skipWeekends {
		// Wall-clock and absolute spans differ across DST shifts; never
		// report more than the absolute span.
		if wd := WeekdayDuration(thread.CreatedAt, answer.CreatedAt, c.loc); wd < d {
			d = wd
		}
	}

	h := d.Hours()
	return &h, false
}

// WeekdayDuration returns the wall-clock time between start and end that
// falls on Monday through Friday in loc. Partial days count proportionally.
//
// A span with no weekend time returns the absolute duration, so offset
// changes on weekdays are counted exactly. When a span covers both weekend
// time and a weekday offset change, the result is off by that change.
func WeekdayDuration(start, end time.Time, loc *time.Location) time.Duration {
	if !end.After(start) {
		return 0
	}
	a, b := wallClock(start, loc), wallClock(end, loc)
	weekend := weekendBefore(b) - weekendBefore(a)
	if weekend == 0 {
		return end.Sub(start)
	}
	d := b.Sub(a) - weekend
	if d < 0 {
		return 0
	}
	return d
}

// wallClock re-expresses t's local date and time in UTC so that every
// calendar day is exactly 24h long.
func wallClock(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// weekendBefore returns the Saturday/Sunday time between epoch and t.
func weekendBefore(t time.Time) time.Duration {
	since := t.Sub(epoch)
	weeks, rem := since/week, since%week
	if rem < 0 {
		weeks--
		rem += week
	}

	var partial time.Duration
	if rem > 5*day {
		partial = rem - 5*day
	}
	return weeks*2*day + partial
}
