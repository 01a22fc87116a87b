package dates

import (
	"time"

	"github.com/vantol/checklist/internal/task"
)

// NextRecurrence computes the next occurrence of a repeating task.
//
// The basis is the later of today-at-midnight and the original due date's
// calendar day, so completing an overdue task never generates occurrences in
// the past. A non-midnight time-of-day on the original due date is preserved
// on the basis. The basis advances by one day (daily) or seven (weekly); a
// candidate strictly after end-of-day of the series end date ends the series.
// It returns false when the series has ended or the recurrence kind is not
// supported.
func NextRecurrence(due time.Time, kind task.Recurrence, end *time.Time, now time.Time) (time.Time, bool) {
	if due.IsZero() {
		return time.Time{}, false
	}

	today := midnight(now)
	dueDay := midnight(due)

	hadTime := due.Hour() != 0 || due.Minute() != 0

	base := due
	if dueDay.Before(today) {
		base = today
		if hadTime {
			base = time.Date(today.Year(), today.Month(), today.Day(), due.Hour(), due.Minute(), 0, 0, time.Local)
		}
	}

	switch kind {
	case task.RecurDaily:
		base = base.AddDate(0, 0, 1)
	case task.RecurWeekly:
		base = base.AddDate(0, 0, 7)
	default:
		return time.Time{}, false
	}

	if end != nil {
		endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
		if base.After(endOfDay) {
			return time.Time{}, false
		}
	}
	return base, true
}
