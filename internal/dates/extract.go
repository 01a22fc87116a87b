package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// trailingPatterns match a date/time clause at the end of free task text, in
// the order they are tried during quick capture.
var trailingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+(today|tomorrow|tmr|tom)(\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?$`),
	regexp.MustCompile(`(?i)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)(\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?$`),
	regexp.MustCompile(`(?i)\s+next\s+(week|monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`),
	regexp.MustCompile(`(?i)\s+in\s+(\d+)\s+days?$`),
	regexp.MustCompile(`(?i)\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`),
	regexp.MustCompile(`\s+(\d{1,2}[/-]\d{1,2})$`),
}

// ExtractDueDate scans free task text for a trailing date/time clause such as
// "buy milk tomorrow at 3pm" and, when one parses, strips it. It returns the
// cleaned text, the parsed due time, and whether a clause was found.
func ExtractDueDate(text string, now time.Time) (string, time.Time, bool) {
	for _, pattern := range trailingPatterns {
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		clause := strings.TrimSpace(text[loc[0]:loc[1]])
		due, ok := ParseDateTime(clause, now)
		if !ok {
			continue
		}
		clean := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
		return clean, due, true
	}
	return text, time.Time{}, false
}

// HasTime reports whether t carries a specific time-of-day, i.e. is not the
// midnight all-day sentinel.
func HasTime(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0
}

// FormatClock renders a time-of-day as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// DefaultEndTime returns the "HH:MM" one hour after an "HH:MM" start time,
// wrapping past midnight. It returns the empty string for malformed input.
func DefaultEndTime(start string) string {
	parts := strings.SplitN(start, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return ""
	}
	return time.Date(0, 1, 1, (hours+1)%24, minutes, 0, 0, time.UTC).Format("15:04")
}
