package tools

import (
	"strings"
	"time"
)

// calendar resolves relative date expressions ("today", "tomorrow", "next
// friday") against a reference clock
type calendar struct{}

// NewCalendar creates the calendar tool
func NewCalendar() Calendar {
	return &calendar{}
}

func (c *calendar) Name() string {
	return ToolCalendar
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDate maps an expression to a concrete date. The second return is
// false when the expression is not recognized.
func (c *calendar) ResolveDate(expression string, now time.Time) (time.Time, bool) {
	expr := strings.ToLower(strings.TrimSpace(expression))
	// Midnight in now's own zone; Truncate works on absolute time and
	// lands on the wrong calendar day outside UTC.
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch expr {
	case "today", "tonight":
		return day, true
	case "tomorrow":
		return day.AddDate(0, 0, 1), true
	case "yesterday":
		return day.AddDate(0, 0, -1), true
	case "next week":
		return day.AddDate(0, 0, 7), true
	}

	// "friday" means the coming friday; "next friday" skips a week when the
	// day has already passed this week
	target, hasNext := expr, false
	if rest, ok := strings.CutPrefix(expr, "next "); ok {
		target, hasNext = rest, true
	}
	if weekday, ok := weekdays[target]; ok {
		delta := (int(weekday) - int(day.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		if hasNext && delta < 7 {
			delta += 7
		}
		return day.AddDate(0, 0, delta), true
	}

	// Fall back to explicit formats
	for _, layout := range []string{"2006-01-02", "01/02/2006", "January 2, 2006", "January 2"} {
		if parsed, err := time.Parse(layout, expression); err == nil {
			if parsed.Year() == 0 {
				parsed = parsed.AddDate(now.Year(), 0, 0)
			}
			return parsed, true
		}
	}

	return time.Time{}, false
}
