package dates

import (
	"strconv"
	"time"
)

// IsToday reports whether t falls on the same calendar day as now.
func IsToday(t *time.Time, now time.Time) bool {
	if t == nil {
		return false
	}
	return midnight(*t).Equal(midnight(now))
}

// IsOverdue reports whether t is in the past. A midnight due time means
// all-day, so the comparison point for such tasks is the end of their day;
// tasks due today are never overdue.
func IsOverdue(t *time.Time, now time.Time) bool {
	if t == nil {
		return false
	}
	deadline := *t
	if deadline.Hour() == 0 && deadline.Minute() == 0 {
		deadline = time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
	}
	return deadline.Before(now) && !IsToday(t, now)
}

// IsThisWeek reports whether t falls between today and the end of the
// current week (weeks end on Sunday).
func IsThisWeek(t *time.Time, now time.Time) bool {
	if t == nil {
		return false
	}
	today := midnight(now)
	endOfWeek := today.AddDate(0, 0, 7-int(now.Weekday()))
	endOfWeek = time.Date(endOfWeek.Year(), endOfWeek.Month(), endOfWeek.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
	return !t.Before(today) && !t.After(endOfWeek)
}

// FormatDue renders a due date for display: "Today"/"Tomorrow", a weekday
// name within a week, "Nd overdue" in the past, and "Jan 2" otherwise, with
// the time appended when one is set.
func FormatDue(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}
	timeStr := ""
	if t.Hour() != 0 || t.Minute() != 0 {
		timeStr = " " + t.Format("3:04 PM")
	}

	today := midnight(now)
	day := midnight(*t)
	diff := int(day.Sub(today).Hours() / 24)

	switch {
	case diff == 0:
		return "Today" + timeStr
	case diff == 1:
		return "Tomorrow" + timeStr
	case diff < 0:
		return strconv.Itoa(-diff) + "d overdue"
	case diff < 7:
		return t.Weekday().String()[:3] + timeStr
	default:
		return t.Format("Jan 2") + timeStr
	}
}
