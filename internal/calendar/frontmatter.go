package calendar

import (
	"regexp"
	"strings"

	"github.com/vantol/checklist/internal/task"
)

// field is one frontmatter key/value pair. Emission preserves insertion
// order, which the calendar consumer relies on only loosely but humans read.
type field struct {
	key   string
	value any
}

// dayCodes maps time.Weekday ordinals (Sunday = 0) to the calendar format's
// single-letter day codes.
var dayCodes = []string{"U", "M", "T", "W", "R", "F", "S"}

// needsQuoting matches strings that would change meaning if emitted bare:
// YAML-significant characters, reserved words, numeric lookalikes, and
// leading/trailing whitespace.
var (
	specialChars  = regexp.MustCompile("[\x00-\x1f\\\\:'\"#\\[\\]{}|>&*!?@`%]")
	reservedWords = regexp.MustCompile(`(?i)^(true|false|null|~|yes|no|on|off|\d+\.?\d*|0x[0-9a-fA-F]+|0o[0-7]+|\.inf|\.nan|-\.inf)$`)
)

// quoteValue renders a string as a YAML scalar, double-quoting with escapes
// only when the bare form would be misread.
func quoteValue(s string) string {
	needs := specialChars.MatchString(s) ||
		reservedWords.MatchString(s) ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") ||
		strings.ContainsAny(s, "\n\r\t") ||
		s == ""
	if !needs {
		return s
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}

// renderRecord emits the full projection file: a frontmatter header followed
// by the free-text body (notes, linked-note backlink, subtask checklist).
func renderRecord(fields []field, t *task.Task) string {
	lines := []string{"---"}
	for _, f := range fields {
		switch v := f.value.(type) {
		case nil:
			lines = append(lines, f.key+": null")
		case []string:
			// Day codes are emitted unquoted in flow style; the consumer
			// rejects quoted codes.
			lines = append(lines, f.key+": ["+strings.Join(v, ", ")+"]")
		case bool:
			if v {
				lines = append(lines, f.key+": true")
			} else {
				lines = append(lines, f.key+": false")
			}
		case string:
			lines = append(lines, f.key+": "+quoteValue(v))
		case rawValue:
			lines = append(lines, f.key+": "+string(v))
		}
	}
	lines = append(lines, "---")

	var body []string
	if t.Notes != "" {
		body = append(body, t.Notes)
	}
	if t.LinkedNote != "" {
		body = append(body, "**Linked Note:** [["+strings.TrimSuffix(t.LinkedNote, ".md")+"]]")
	}
	if len(t.Subtasks) > 0 {
		var checks []string
		for _, s := range t.Subtasks {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			checks = append(checks, "- ["+mark+"] "+s.Text)
		}
		body = append(body, "## Subtasks\n"+strings.Join(checks, "\n"))
	}

	return strings.TrimSpace(strings.Join(lines, "\n") + "\n\n" + strings.Join(body, "\n\n"))
}

// rawValue is emitted verbatim, used for pre-quoted completion dates.
type rawValue string

// priorityPrefix returns the emoji marker prepended to projection titles.
func priorityPrefix(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "\U0001F534 " // red circle
	case task.PriorityMedium:
		return "\U0001F7E1 " // yellow circle
	case task.PriorityLow:
		return "\U0001F7E2 " // green circle
	default:
		return ""
	}
}
