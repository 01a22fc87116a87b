package calendar

import (
	"regexp"
	"strings"
)

var drivePattern = regexp.MustCompile(`^[A-Za-z]:`)

// ValidPath reports whether p is safe to hand to file operations: relative,
// free of parent-directory references and free of control characters.
func ValidPath(p string) bool {
	if p == "" {
		return false
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || drivePattern.MatchString(p) {
		return false
	}
	if strings.Contains(p, "..") {
		return false
	}
	for _, r := range p {
		if r < 0x20 {
			return false
		}
	}
	return true
}

var unsafeTitleChars = regexp.MustCompile(`[\\/:*?"<>|#^\[\]]`)

// sanitizeTitle makes a task title usable inside a file name: unsafe
// characters stripped, whitespace trimmed, length capped at 40 runes, with
// "Task" as the fallback for titles that vanish entirely.
func sanitizeTitle(title string) string {
	s := strings.TrimSpace(unsafeTitleChars.ReplaceAllString(title, ""))
	if runes := []rune(s); len(runes) > 40 {
		s = string(runes[:40])
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "Task"
	}
	return s
}

// shortID returns the trailing six characters of a task id, enough to keep
// file names collision-free without dominating them.
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
