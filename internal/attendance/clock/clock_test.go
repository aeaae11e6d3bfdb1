package clock

import (
	"testing"
	"time"
)

func TestManual_AdvanceAndSet(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 58, 0, 0, time.UTC)
	c := NewManual(start)

	if got := c.Advance(time.Minute); !got.Equal(start.Add(time.Minute)) {
		t.Errorf("Advance: got %v", got)
	}
	if got := Today(c, nil); got != "2024-01-01" {
		t.Errorf("Today: got %q", got)
	}

	c.Advance(2 * time.Minute)
	if got := Today(c, nil); got != "2024-01-02" {
		t.Errorf("Today after midnight: got %q", got)
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("Set: got %v", c.Now())
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	ts := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+5", 5*60*60)

	if got := DateOf(ts, nil); got != "2024-01-01" {
		t.Errorf("UTC date: got %q", got)
	}
	if got := DateOf(ts, loc); got != "2024-01-02" {
		t.Errorf("UTC+5 date: got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Error("expected error for invalid day")
	}
	if _, err := ParseDate("2024-01-31"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSystem_NowIsTruncatedUTC(t *testing.T) {
	now := System{}.Now()
	if now.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", now.Location())
	}
	if now.Nanosecond()%int(Resolution) != 0 {
		t.Errorf("expected millisecond resolution, got %v", now)
	}
}
