// Package calendar maintains a derived, one-way projection of due-dated
// tasks as individual event files in a calendar folder. The projection is
// idempotent: repeated syncs of an unchanged task rewrite the same file
// rather than accumulating duplicates.
package calendar

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/vantol/checklist/internal/dates"
	"github.com/vantol/checklist/internal/task"
)

const dateLayout = "2006-01-02"

// Projector reconciles task state into calendar event files under a single
// folder. It is not safe for concurrent use; the owning store serializes
// calls.
type Projector struct {
	fs     FS
	folder string
	logger *log.Logger
	now    func() time.Time
}

// New returns a projector writing into folder (a vault-relative path) via fs.
func New(fs FS, folder string) *Projector {
	if folder == "" {
		folder = "calendar/tasks"
	}
	return &Projector{
		fs:     fs,
		folder: folder,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
}

// SetLogger directs the projector's non-fatal failure reports to logger.
func (p *Projector) SetLogger(logger *log.Logger) {
	p.logger = logger
}

// SetClock overrides the clock used for completion stamps (useful for
// testing).
func (p *Projector) SetClock(now func() time.Time) {
	p.now = now
}

// eventPath computes the deterministic file identity for a task. Recurring
// tasks get a stable date-free name keyed by id so repeated syncs update one
// file; single events embed the due date and a short id suffix.
func (p *Projector) eventPath(t *task.Task) string {
	title := sanitizeTitle(t.Text)
	if t.IsRecurring() {
		if t.CalendarEventPath != "" {
			return t.CalendarEventPath
		}
		return fmt.Sprintf("%s/recurring-%s-%s.md", p.folder, title, shortID(t.ID))
	}
	return fmt.Sprintf("%s/%s %s-%s.md", p.folder, t.DueDate.Format(dateLayout), title, shortID(t.ID))
}

// Sync writes or updates the projection for t. It is a no-op for tasks
// without a due date. The new file is durably written before any stale file
// at a previous identity is removed, so a mid-failure never loses both; on
// write failure the task's recorded identity is left unchanged.
func (p *Projector) Sync(t *task.Task) error {
	if t.DueDate == nil {
		return nil
	}
	if !ValidPath(p.folder) {
		return fmt.Errorf("invalid calendar folder path: %q", p.folder)
	}
	if t.Text == "" {
		return fmt.Errorf("task %s has no text", t.ID)
	}
	if t.CalendarEventPath != "" && !ValidPath(t.CalendarEventPath) {
		t.CalendarEventPath = ""
	}

	path := p.eventPath(t)
	content := p.buildEvent(t)

	if err := p.fs.MkdirAll(p.folder); err != nil {
		return fmt.Errorf("failed to create calendar folder: %w", err)
	}
	if err := p.fs.WriteFile(path, []byte(content)); err != nil {
		// Identity deliberately not updated: the previous projection, if
		// any, is still the valid one.
		return fmt.Errorf("failed to write calendar event: %w", err)
	}

	oldPath := t.CalendarEventPath
	t.CalendarEventPath = path

	if oldPath != "" && oldPath != path {
		if err := p.fs.Remove(oldPath); err != nil {
			p.logger.Printf("failed to remove stale calendar event %s: %v", oldPath, err)
		}
	}
	return nil
}

// buildEvent renders the projection record for t.
func (p *Projector) buildEvent(t *task.Task) string {
	due := *t.DueDate
	dateStr := due.Format(dateLayout)
	allDay := t.AllDay && t.StartTime == ""
	title := priorityPrefix(t.Priority) + t.Text

	var fields []field
	if t.IsRecurring() {
		days := dayCodes
		if t.Recurrence == task.RecurWeekly {
			days = []string{dayCodes[int(due.Weekday())]}
		}
		endRecur := due.AddDate(1, 0, 0)
		if t.RecurrenceEndDate != nil {
			endRecur = *t.RecurrenceEndDate
		}
		fields = []field{
			{"title", title},
			{"type", "recurring"},
			{"daysOfWeek", days},
			{"startRecur", dateStr},
			{"endRecur", endRecur.Format(dateLayout)},
		}
		fields = appendTimes(fields, t, allDay)
		fields = append(fields, field{"allDay", allDay})
	} else {
		fields = []field{
			{"title", title},
			{"allDay", allDay},
			{"completed", nil},
			{"type", "single"},
			{"date", dateStr},
		}
		fields = appendTimes(fields, t, allDay)
	}
	return renderRecord(fields, t)
}

func appendTimes(fields []field, t *task.Task, allDay bool) []field {
	if allDay || t.StartTime == "" {
		return fields
	}
	end := t.EndTime
	if end == "" {
		end = dates.DefaultEndTime(t.StartTime)
	}
	return append(fields,
		field{"startTime", t.StartTime},
		field{"endTime", end},
	)
}

// Remove deletes the projection at the task's recorded identity, if any, and
// clears the identity field. Removal failures are logged, not returned.
func (p *Projector) Remove(t *task.Task) error {
	if t.CalendarEventPath == "" {
		return nil
	}
	// The recorded identity may come from an untrusted persisted document.
	if !ValidPath(t.CalendarEventPath) {
		p.logger.Printf("refusing to remove invalid calendar path %q", t.CalendarEventPath)
		t.CalendarEventPath = ""
		return nil
	}
	if err := p.fs.Remove(t.CalendarEventPath); err != nil {
		p.logger.Printf("failed to remove calendar event %s: %v", t.CalendarEventPath, err)
		return nil
	}
	t.CalendarEventPath = ""
	return nil
}

// completedPattern locates the completion marker inside an existing
// projection header.
var completedPattern = regexp.MustCompile(`completed:\s*(null|false|true|"[^"]*")`)

// MarkCompletion patches only the completion marker of an existing
// projection in place, leaving the rest of the record untouched. The marker
// becomes a quoted date when completed and null otherwise.
func (p *Projector) MarkCompletion(t *task.Task, completed bool) error {
	if t.CalendarEventPath == "" || !ValidPath(t.CalendarEventPath) {
		return nil
	}
	content, err := p.fs.ReadFile(t.CalendarEventPath)
	if err != nil {
		p.logger.Printf("failed to read calendar event %s: %v", t.CalendarEventPath, err)
		return nil
	}

	value := "null"
	if completed {
		value = `"` + p.now().Format(dateLayout) + `"`
	}

	text := string(content)
	if completedPattern.MatchString(text) {
		text = completedPattern.ReplaceAllString(text, "completed: "+value)
	} else if strings.HasPrefix(text, "---\n") {
		text = "---\ncompleted: " + value + "\n" + text[len("---\n"):]
	}

	if err := p.fs.WriteFile(t.CalendarEventPath, []byte(text)); err != nil {
		p.logger.Printf("failed to update calendar event %s: %v", t.CalendarEventPath, err)
	}
	return nil
}

// RecordCompletedOccurrence emits a distinct completed single-event record
// for one occurrence of a recurring task, preserving history while the
// recurring identity continues to track future occurrences.
func (p *Projector) RecordCompletedOccurrence(t *task.Task) error {
	if t.DueDate == nil {
		return nil
	}
	if !ValidPath(p.folder) {
		return fmt.Errorf("invalid calendar folder path: %q", p.folder)
	}

	due := *t.DueDate
	dateStr := due.Format(dateLayout)
	allDay := t.AllDay && t.StartTime == ""
	path := fmt.Sprintf("%s/%s %s-%s (done).md", p.folder, dateStr, sanitizeTitle(t.Text), shortID(t.ID))

	fields := []field{
		{"title", priorityPrefix(t.Priority) + t.Text},
		{"allDay", allDay},
		{"type", "single"},
		{"date", dateStr},
		{"completed", rawValue(`"` + p.now().Format(dateLayout) + `"`)},
	}
	fields = appendTimes(fields, t, allDay)

	if err := p.fs.MkdirAll(p.folder); err != nil {
		return fmt.Errorf("failed to create calendar folder: %w", err)
	}
	if err := p.fs.WriteFile(path, []byte(renderRecord(fields, t))); err != nil {
		return fmt.Errorf("failed to write completed occurrence: %w", err)
	}
	return nil
}

// SyncAll projects every due-dated open task in the document and reports how
// many were synced. Individual failures are logged and skipped.
func (p *Projector) SyncAll(doc *task.Document) int {
	count := 0
	for _, list := range doc.Lists {
		for _, t := range list.Todos {
			if t.DueDate == nil {
				continue
			}
			if err := p.Sync(t); err != nil {
				p.logger.Printf("sync failed for task %s: %v", t.ID, err)
				continue
			}
			count++
		}
	}
	return count
}
