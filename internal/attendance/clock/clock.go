// Package clock supplies server time and calendar dates to the attendance
// engine. Everything that needs "now" takes a Clock so tests can pin time.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the calendar date format used for attendance partitions.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// Resolution is the finest time step the engine keeps. Every store holds at
// least millisecond precision, so a timestamp survives a round trip intact.
const Resolution = time.Millisecond

// System reads the wall clock in UTC, truncated to Resolution.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC().Truncate(Resolution) }

// Manual is a Clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// DateOf returns the calendar date of t in loc (UTC when loc is nil).
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Today returns the current calendar date according to c.
func Today(c Clock, loc *time.Location) string {
	return DateOf(c.Now(), loc)
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
