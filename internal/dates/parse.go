// Package dates implements the natural-language date/time parser, the
// recurrence engine and the calendar-day predicates used by smart lists.
//
// Every function takes "now" explicitly so results are deterministic under
// test; nothing here reads the wall clock. A result of exactly midnight is
// the sentinel for "no specific time" (all-day).
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "[at] 3pm", "[at] 3:30 pm"
	meridiemPattern = regexp.MustCompile(`(?i)(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
	// "[at] 14:30", "[at] 14:30:00"
	clockPattern  = regexp.MustCompile(`(?:at\s+)?(\d{1,2}):(\d{2})(?::(\d{2}))?`)
	inDaysPattern = regexp.MustCompile(`^in (\d+) days?$`)
	shortPattern  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)

	weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	// Layouts tried when no keyword rule matches, covering the calendar-date
	// spellings the parser accepts verbatim.
	fallbackLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"January 2 2006",
	}
)

// ParseDateTime converts a free-text expression like "tomorrow at 3pm",
// "next monday", "in 3 days" or "12/25" into an absolute local time. It
// returns false when no rule matches. Dates without an explicit time-of-day
// resolve to midnight.
func ParseDateTime(input string, now time.Time) (time.Time, bool) {
	if strings.TrimSpace(input) == "" {
		return time.Time{}, false
	}

	today := midnight(now)
	lower := strings.ToLower(strings.TrimSpace(input))

	// Pull out a time clause first; what remains is the date expression.
	dateStr := lower
	var clock *timeOfDay
	if tod, rest, ok := extractTime(lower); ok {
		clock = &tod
		dateStr = rest
	}

	result, ok := parseDatePart(dateStr, input, today, now)
	if !ok {
		return time.Time{}, false
	}

	if clock != nil {
		result = time.Date(result.Year(), result.Month(), result.Day(), clock.hours, clock.minutes, 0, 0, time.Local)
	} else {
		result = midnight(result)
	}
	return result, true
}

type timeOfDay struct {
	hours, minutes int
}

// extractTime finds the first time clause in s, returning the parsed
// time-of-day and s with the clause removed.
func extractTime(s string) (timeOfDay, string, bool) {
	for _, pattern := range []*regexp.Regexp{meridiemPattern, clockPattern} {
		loc := pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		m := pattern.FindStringSubmatch(s)
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		if pattern == meridiemPattern {
			switch strings.ToLower(m[3]) {
			case "pm":
				if hours != 12 {
					hours += 12
				}
			case "am":
				if hours == 12 {
					hours = 0
				}
			}
		}
		if hours > 23 || minutes > 59 {
			continue
		}
		rest := s[:loc[0]] + s[loc[1]:]
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), " at"))
		return timeOfDay{hours, minutes}, rest, true
	}
	return timeOfDay{}, s, false
}

// parseDatePart resolves the date portion of an expression. original is the
// unmodified input, used for the verbatim calendar-date fallback.
func parseDatePart(dateStr, original string, today, now time.Time) (time.Time, bool) {
	switch dateStr {
	case "", "today":
		return today, true
	case "tomorrow", "tmr", "tom":
		return today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "next week":
		return today.AddDate(0, 0, 7), true
	}

	if m := inDaysPattern.FindStringSubmatch(dateStr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n), true
	}

	if d, ok := parseWeekday(dateStr, today); ok {
		return d, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(original), time.Local); err == nil {
			return t.In(time.Local), true
		}
	}

	if m := shortPattern.FindStringSubmatch(dateStr); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, time.Local)
		if d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d, true
	}

	return time.Time{}, false
}

// parseWeekday resolves a weekday name, optionally prefixed with "next".
// The nearest future occurrence is chosen; a same-day or past weekday rolls
// forward a week, and "next" forces a further seven days beyond that.
func parseWeekday(dateStr string, today time.Time) (time.Time, bool) {
	name := dateStr
	isNext := false
	if rest, found := strings.CutPrefix(dateStr, "next "); found {
		name = strings.TrimSpace(rest)
		isNext = true
	}

	dayIndex := -1
	for i, d := range weekdayNames {
		if strings.HasPrefix(name, d) || name == d[:3] {
			dayIndex = i
			break
		}
	}
	if dayIndex == -1 {
		return time.Time{}, false
	}

	daysToAdd := dayIndex - int(today.Weekday())
	if daysToAdd <= 0 {
		daysToAdd += 7
	}
	if isNext {
		daysToAdd += 7
	}
	return today.AddDate(0, 0, daysToAdd), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
