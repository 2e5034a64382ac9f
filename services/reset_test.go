package services

import (
	"testing"
	"time"
)

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func TestNextResetIsFollowingLocalMidnight(t *testing.T) {
	loc := losAngeles(t)
	now := time.Date(2025, time.June, 10, 15, 30, 0, 0, loc)

	next := NextReset(now, loc)

	want := time.Date(2025, time.June, 11, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("NextReset = %v, want %v", next, want)
	}
}

func TestNextResetAtExactlyMidnight(t *testing.T) {
	loc := losAngeles(t)
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, loc)

	next := NextReset(now, loc)

	want := time.Date(2025, time.June, 11, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("NextReset at boundary = %v, want %v", next, want)
	}
	if !next.After(now) {
		t.Fatal("NextReset must be strictly after now")
	}
}

func TestNextResetAcrossSpringForward(t *testing.T) {
	loc := losAngeles(t)
	// 2025-03-09 loses 02:00–03:00 local; the day is 23 hours long.
	now := time.Date(2025, time.March, 9, 0, 30, 0, 0, loc)

	next := NextReset(now, loc)

	local := next.In(loc)
	if local.Hour() != 0 || local.Day() != 10 {
		t.Fatalf("expected local midnight March 10, got %v", local)
	}
	if got := next.Sub(now); got != 22*time.Hour+30*time.Minute {
		t.Fatalf("expected 22h30m until boundary on the short day, got %v", got)
	}
}

func TestNextResetAcrossFallBack(t *testing.T) {
	loc := losAngeles(t)
	// 2025-11-02 repeats 01:00–02:00 local; the day is 25 hours long.
	now := time.Date(2025, time.November, 2, 0, 30, 0, 0, loc)

	next := NextReset(now, loc)

	local := next.In(loc)
	if local.Hour() != 0 || local.Day() != 3 {
		t.Fatalf("expected local midnight November 3, got %v", local)
	}
	if got := next.Sub(now); got != 24*time.Hour+30*time.Minute {
		t.Fatalf("expected 24h30m until boundary on the long day, got %v", got)
	}
}

func TestNextResetRespectsReferenceTimezone(t *testing.T) {
	la := losAngeles(t)
	// An instant that is already "tomorrow" in UTC must still resolve
	// against the reference timezone's calendar.
	now := time.Date(2025, time.June, 11, 2, 0, 0, 0, time.UTC) // June 10, 19:00 in LA

	next := NextReset(now, la)

	local := next.In(la)
	if local.Day() != 11 || local.Hour() != 0 {
		t.Fatalf("expected LA midnight June 11, got %v", local)
	}
}
