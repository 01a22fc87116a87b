package task

import (
	"strings"
	"time"
)

// validPriorities and validRecurrences gate enum coercion during validation.
var (
	validPriorities = map[Priority]bool{
		PriorityHigh:   true,
		PriorityMedium: true,
		PriorityLow:    true,
		PriorityNone:   true,
	}
	validRecurrences = map[Recurrence]bool{
		RecurDaily:  true,
		RecurWeekly: true,
	}
	validSortModes = map[SortMode]bool{
		SortManual:   true,
		SortPriority: true,
		SortDueDate:  true,
		SortCreated:  true,
	}
)

// Validate turns an untrusted task-like record (a generically decoded JSON
// object) into a well-formed Task. It returns false when the record lacks a
// usable text field; every other defect is repaired by coercion or
// defaulting. The clock supplies timestamps for missing createdAt values.
func Validate(raw map[string]any, now time.Time) (*Task, bool) {
	if raw == nil {
		return nil, false
	}
	text, ok := raw["text"].(string)
	if !ok || text == "" {
		return nil, false
	}

	t := &Task{
		Text:              clip(text, MaxTaskTextLength),
		Priority:          PriorityNone,
		AllDay:            coerceBool(raw["allDay"], true),
		StartTime:         coerceString(raw["startTime"]),
		EndTime:           coerceString(raw["endTime"]),
		Notes:             clip(coerceString(raw["notes"]), MaxTaskNotesLength),
		LinkedNote:        coerceString(raw["linkedNote"]),
		CalendarEventPath: coerceString(raw["calendarEventPath"]),
		Notified:          coerceBool(raw["notified"], false),
		Notified15:        coerceBool(raw["notified15"], false),
		Subtasks:          []Subtask{},
	}

	if id, ok := raw["id"].(string); ok && id != "" {
		t.ID = id
	} else {
		t.ID = NewID()
	}

	if p := Priority(coerceString(raw["priority"])); validPriorities[p] {
		t.Priority = p
	}
	if r := Recurrence(coerceString(raw["recurrence"])); validRecurrences[r] {
		t.Recurrence = r
	}

	t.DueDate = coerceTime(raw["dueDate"])
	t.RecurrenceEndDate = coerceTime(raw["recurrenceEndDate"])
	t.CompletedAt = coerceTime(raw["completedAt"])
	if created := coerceTime(raw["createdAt"]); created != nil {
		t.CreatedAt = *created
	} else {
		t.CreatedAt = now
	}

	if tags, ok := raw["tags"].([]any); ok {
		t.Tags = []string{}
		for _, v := range tags {
			if s, ok := v.(string); ok {
				t.Tags = append(t.Tags, s)
			}
		}
	} else {
		t.Tags = ExtractTags(t.Text)
	}

	if subs, ok := raw["subtasks"].([]any); ok {
		for _, v := range subs {
			sub, ok := v.(map[string]any)
			if !ok {
				continue
			}
			subText, ok := sub["text"].(string)
			if !ok {
				continue
			}
			s := Subtask{
				Text:      clip(subText, MaxSubtaskTextLength),
				Completed: coerceBool(sub["completed"], false),
			}
			if id, ok := sub["id"].(string); ok && id != "" {
				s.ID = id
			} else {
				s.ID = NewID()
			}
			if created := coerceTime(sub["createdAt"]); created != nil {
				s.CreatedAt = *created
			} else {
				s.CreatedAt = now
			}
			t.Subtasks = append(t.Subtasks, s)
		}
	}

	return t, true
}

// Normalize clamps and repairs an already-typed task in the same way Validate
// repairs raw records: lengths clipped, enums coerced to safe defaults, tags
// derived from text when absent. Normalize of a valid task is the identity,
// so validation is idempotent.
func Normalize(t *Task) {
	if t.ID == "" {
		t.ID = NewID()
	}
	t.Text = clip(t.Text, MaxTaskTextLength)
	t.Notes = clip(t.Notes, MaxTaskNotesLength)
	if !validPriorities[t.Priority] {
		t.Priority = PriorityNone
	}
	if t.Recurrence != RecurNone && !validRecurrences[t.Recurrence] {
		t.Recurrence = RecurNone
	}
	if t.Tags == nil {
		t.Tags = ExtractTags(t.Text)
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = NewID()
		}
		t.Subtasks[i].Text = clip(t.Subtasks[i].Text, MaxSubtaskTextLength)
	}
}

// ValidateList turns an untrusted list-like record into a well-formed List,
// dropping tasks that fail validation. fallbackName names lists whose own
// name is missing or malformed.
func ValidateList(raw map[string]any, fallbackName string, now time.Time) *List {
	if fallbackName == "" {
		fallbackName = "Untitled"
	}
	l := &List{Name: fallbackName}
	if raw == nil {
		return l
	}
	if name, ok := raw["name"].(string); ok {
		l.Name = clip(name, MaxListNameLength)
	}
	l.Color = coerceString(raw["color"])
	l.Todos = validateTasks(raw["todos"], now)
	l.Archived = validateTasks(raw["archived"], now)
	return l
}

// ValidateDocument turns a whole untrusted persisted document into a
// well-formed Document: every list and task validated, at least one list
// guaranteed, and a dangling currentList repaired.
func ValidateDocument(raw map[string]any, now time.Time) *Document {
	doc := &Document{
		Lists:    map[string]*List{},
		Settings: ValidateSettings(raw["settings"]),
	}

	if lists, ok := raw["lists"].(map[string]any); ok {
		for id, v := range lists {
			rawList, _ := v.(map[string]any)
			doc.Lists[id] = ValidateList(rawList, id, now)
		}
	}
	if len(doc.Lists) == 0 {
		doc.Lists[DefaultListID] = &List{Name: "My Tasks"}
	}

	if current, ok := raw["currentList"].(string); ok && doc.Lists[current] != nil {
		doc.CurrentList = current
	} else {
		for id := range doc.Lists {
			if doc.CurrentList == "" || id < doc.CurrentList {
				doc.CurrentList = id
			}
		}
	}
	return doc
}

// ValidateSettings merges untrusted settings over the defaults key by key,
// keeping a persisted value only when its type (and for sortBy, its enum
// membership) checks out.
func ValidateSettings(raw any) Settings {
	s := DefaultSettings()
	m, ok := raw.(map[string]any)
	if !ok {
		return s
	}
	if sortBy, ok := m["sortBy"].(string); ok && validSortModes[SortMode(sortBy)] {
		s.SortBy = SortMode(sortBy)
	}
	if folder, ok := m["fullCalendarFolder"].(string); ok {
		s.FullCalendarFolder = folder
	}
	setBool := func(dst *bool, key string) {
		if v, ok := m[key].(bool); ok {
			*dst = v
		}
	}
	setBool(&s.ShowArchived, "showArchived")
	setBool(&s.Notifications, "notifications")
	setBool(&s.FullCalendarSync, "fullCalendarSync")
	setBool(&s.EnableConfirmDialogs, "enableConfirmDialogs")
	setBool(&s.EnableAnimations, "enableAnimations")
	setBool(&s.EnableKeyboardNavigation, "enableKeyboardNavigation")
	setBool(&s.EnableQuickCapture, "enableQuickCapture")
	return s
}

func validateTasks(raw any, now time.Time) []*Task {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []*Task
	for _, v := range list {
		m, _ := v.(map[string]any)
		if t, ok := Validate(m, now); ok {
			out = append(out, t)
		}
	}
	return out
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Clip on a rune boundary so a multi-byte character is never split.
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

func coerceBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// coerceTime accepts the two timestamp encodings found in persisted
// documents: RFC 3339 strings and epoch-millisecond numbers.
func coerceTime(v any) *time.Time {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(val)); err == nil {
				local := t.In(time.Local)
				return &local
			}
		}
		return nil
	case float64:
		t := time.UnixMilli(int64(val)).In(time.Local)
		return &t
	default:
		return nil
	}
}
