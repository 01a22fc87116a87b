// Package task defines the checklist data model: tasks, subtasks, lists and
// the persisted document, together with the validator that normalizes
// untrusted records on load.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Limits applied by the validator.
const (
	MaxTaskTextLength    = 10000
	MaxTaskNotesLength   = 50000
	MaxSubtaskTextLength = 1000
	MaxListNameLength    = 100
)

// Priority is a task's priority level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "none"
)

// Rank returns the sort rank of a priority (high sorts first).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Next returns the priority that follows p in the cycle
// none -> low -> medium -> high -> none.
func (p Priority) Next() Priority {
	switch p {
	case PriorityNone:
		return PriorityLow
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityNone
	}
}

// Recurrence is a task's repeat schedule. The empty string means the task
// does not repeat.
type Recurrence string

const (
	RecurNone   Recurrence = ""
	RecurDaily  Recurrence = "daily"
	RecurWeekly Recurrence = "weekly"
)

// SortMode selects how a list view orders its tasks.
type SortMode string

const (
	SortManual   SortMode = "manual"
	SortPriority SortMode = "priority"
	SortDueDate  SortMode = "dueDate"
	SortCreated  SortMode = "created"
)

// Task is a single checklist entry. A task belongs to exactly one list, in
// either its todos or its archived partition.
//
// A due date of exactly midnight doubles as the "all day" sentinel: a task
// genuinely due at 00:00 is indistinguishable from an all-day task. This is a
// known representational limitation carried over from the persisted format.
type Task struct {
	ID                string     `json:"id"`
	Text              string     `json:"text"`
	Priority          Priority   `json:"priority"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	StartTime         string     `json:"startTime,omitempty"` // "HH:MM"
	EndTime           string     `json:"endTime,omitempty"`   // "HH:MM"
	AllDay            bool       `json:"allDay"`
	Recurrence        Recurrence `json:"recurrence,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
	Tags              []string   `json:"tags"`
	Subtasks          []Subtask  `json:"subtasks"`
	Notes             string     `json:"notes"`
	LinkedNote        string     `json:"linkedNote,omitempty"`
	CalendarEventPath string     `json:"calendarEventPath,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	Notified          bool       `json:"notified"`
	Notified15        bool       `json:"notified15"`
}

// IsRecurring reports whether the task repeats on a supported schedule.
func (t *Task) IsRecurring() bool {
	return t.Recurrence == RecurDaily || t.Recurrence == RecurWeekly
}

// Subtask is a checklist entry owned by a parent task. It has no independent
// lifecycle.
type Subtask struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// List is a named project holding two disjoint partitions of tasks: the open
// todos and the completed archive.
type List struct {
	Name     string  `json:"name"`
	Color    string  `json:"color,omitempty"`
	Todos    []*Task `json:"todos"`
	Archived []*Task `json:"archived"`
}

// Settings are the engine settings embedded in the persisted document.
type Settings struct {
	ShowArchived             bool     `json:"showArchived"`
	SortBy                   SortMode `json:"sortBy"`
	Notifications            bool     `json:"notifications"`
	FullCalendarSync         bool     `json:"fullCalendarSync"`
	FullCalendarFolder       string   `json:"fullCalendarFolder"`
	EnableConfirmDialogs     bool     `json:"enableConfirmDialogs"`
	EnableAnimations         bool     `json:"enableAnimations"`
	EnableKeyboardNavigation bool     `json:"enableKeyboardNavigation"`
	EnableQuickCapture       bool     `json:"enableQuickCapture"`
}

// DefaultSettings returns the settings used for a fresh document and as the
// fallback for malformed persisted values.
func DefaultSettings() Settings {
	return Settings{
		ShowArchived:             false,
		SortBy:                   SortManual,
		Notifications:            true,
		FullCalendarSync:         false,
		FullCalendarFolder:       "calendar/tasks",
		EnableConfirmDialogs:     true,
		EnableAnimations:         true,
		EnableKeyboardNavigation: true,
		EnableQuickCapture:       true,
	}
}

// DefaultListID is the id of the list created when a document has none.
const DefaultListID = "default"

// Document is the root persisted object. At least one list always exists and
// CurrentList always references an existing list.
type Document struct {
	Lists       map[string]*List `json:"lists"`
	CurrentList string           `json:"currentList"`
	Settings    Settings         `json:"settings"`
}

// NewDocument returns a document with a single default list.
func NewDocument() *Document {
	return &Document{
		Lists: map[string]*List{
			DefaultListID: {Name: "My Tasks"},
		},
		CurrentList: DefaultListID,
		Settings:    DefaultSettings(),
	}
}

// NewID returns a fresh unique identifier for tasks, subtasks and lists.
func NewID() string {
	return uuid.NewString()
}
