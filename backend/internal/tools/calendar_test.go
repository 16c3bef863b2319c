package tools

import (
	"testing"
	"time"
)

func TestResolveDate(t *testing.T) {
	// A Monday
	now := time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)
	cal := NewCalendar()

	cases := []struct {
		expr string
		want string
	}{
		{"today", "2025-06-02"},
		{"tonight", "2025-06-02"},
		{"tomorrow", "2025-06-03"},
		{"yesterday", "2025-06-01"},
		{"next week", "2025-06-09"},
		{"friday", "2025-06-06"},
		{"Friday", "2025-06-06"},
		{"monday", "2025-06-09"}, // same weekday means the coming one, not today
		{"next friday", "2025-06-13"},
		{"2025-07-04", "2025-07-04"},
	}

	for _, tc := range cases {
		got, ok := cal.ResolveDate(tc.expr, now)
		if !ok {
			t.Errorf("ResolveDate(%q) not recognized", tc.expr)
			continue
		}
		if formatted := got.Format("2006-01-02"); formatted != tc.want {
			t.Errorf("ResolveDate(%q) = %s, want %s", tc.expr, formatted, tc.want)
		}
	}
}

func TestResolveDate_NonUTCZone(t *testing.T) {
	// Monday morning at UTC+10; in UTC it is still Sunday
	zone := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, zone)
	cal := NewCalendar()

	cases := []struct {
		expr string
		want string
	}{
		{"today", "2025-06-02"},
		{"tomorrow", "2025-06-03"},
		{"friday", "2025-06-06"},
	}

	for _, tc := range cases {
		got, ok := cal.ResolveDate(tc.expr, now)
		if !ok {
			t.Errorf("ResolveDate(%q) not recognized", tc.expr)
			continue
		}
		if formatted := got.Format("2006-01-02"); formatted != tc.want {
			t.Errorf("ResolveDate(%q) = %s, want %s", tc.expr, formatted, tc.want)
		}
	}
}

func TestResolveDate_Unrecognized(t *testing.T) {
	cal := NewCalendar()
	if _, ok := cal.ResolveDate("whenever", time.Now()); ok {
		t.Error("nonsense expression must not resolve")
	}
	if _, ok := cal.ResolveDate("", time.Now()); ok {
		t.Error("empty expression must not resolve")
	}
}
