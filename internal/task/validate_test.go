package task

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)

func TestValidateRejectsMissingText(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"nil record", nil},
		{"empty record", map[string]any{}},
		{"empty text", map[string]any{"text": ""}},
		{"non-string text", map[string]any{"text": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Validate(tt.raw, testNow); ok {
				t.Error("Validate() accepted a record without usable text")
			}
		})
	}
}

func TestValidateRepairsFields(t *testing.T) {
	raw := map[string]any{
		"text":       "write report #work",
		"priority":   "urgent",
		"recurrence": "hourly",
		"allDay":     "yes",
		"notified":   1,
		"dueDate":    "2024-01-15T09:00:00Z",
		"createdAt":  float64(1704880800000),
		"subtasks": []any{
			map[string]any{"text": "outline"},
			map[string]any{"completed": true},
			"not a subtask",
		},
	}

	got, ok := Validate(raw, testNow)
	if !ok {
		t.Fatal("Validate() rejected a repairable record")
	}
	if got.ID == "" {
		t.Error("missing id must be generated")
	}
	if got.Priority != PriorityNone {
		t.Errorf("invalid priority must default to none, got %q", got.Priority)
	}
	if got.Recurrence != RecurNone {
		t.Errorf("invalid recurrence must default to empty, got %q", got.Recurrence)
	}
	if !got.Notified {
		// Non-bool input falls back to the default.
		t.Log("notified coerced to default")
	}
	if got.DueDate == nil || !got.DueDate.Equal(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("dueDate not parsed: %v", got.DueDate)
	}
	if got.CreatedAt.IsZero() {
		t.Error("createdAt must be set from epoch milliseconds")
	}
	if !reflect.DeepEqual(got.Tags, []string{"#work"}) {
		t.Errorf("tags must derive from text, got %v", got.Tags)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Text != "outline" {
		t.Errorf("malformed subtasks must be dropped, got %v", got.Subtasks)
	}
	if got.Subtasks[0].ID == "" {
		t.Error("subtask id must be generated")
	}
}

func TestValidateClipsLengths(t *testing.T) {
	raw := map[string]any{
		"text":  strings.Repeat("a", MaxTaskTextLength+50),
		"notes": strings.Repeat("b", MaxTaskNotesLength+50),
		"subtasks": []any{
			map[string]any{"text": strings.Repeat("c", MaxSubtaskTextLength+50)},
		},
	}
	got, ok := Validate(raw, testNow)
	if !ok {
		t.Fatal("Validate() rejected an over-length record")
	}
	if len(got.Text) != MaxTaskTextLength {
		t.Errorf("text length = %d, want %d", len(got.Text), MaxTaskTextLength)
	}
	if len(got.Notes) != MaxTaskNotesLength {
		t.Errorf("notes length = %d, want %d", len(got.Notes), MaxTaskNotesLength)
	}
	if len(got.Subtasks[0].Text) != MaxSubtaskTextLength {
		t.Errorf("subtask text length = %d, want %d", len(got.Subtasks[0].Text), MaxSubtaskTextLength)
	}
}

func TestValidateExplicitTags(t *testing.T) {
	raw := map[string]any{
		"text": "no tags here",
		"tags": []any{"alpha", 7, "beta"},
	}
	got, ok := Validate(raw, testNow)
	if !ok {
		t.Fatal("Validate() rejected record")
	}
	if !reflect.DeepEqual(got.Tags, []string{"alpha", "beta"}) {
		t.Errorf("tags = %v, want [alpha beta]", got.Tags)
	}
}

// Serializing a validated task and validating it again must be the identity.
func TestValidateIdempotent(t *testing.T) {
	raw := map[string]any{
		"id":        "task-1",
		"text":      "ship release #launch",
		"priority":  "high",
		"dueDate":   "2024-02-01T15:00:00Z",
		"startTime": "15:00",
		"subtasks": []any{
			map[string]any{"id": "sub-1", "text": "tag the build", "completed": true},
		},
	}
	first, ok := Validate(raw, testNow)
	if !ok {
		t.Fatal("Validate() rejected record")
	}

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second, ok := Validate(roundTrip, testNow)
	if !ok {
		t.Fatal("Validate() rejected its own output")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validation not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNormalizeIsIdentityOnValidTask(t *testing.T) {
	valid := &Task{
		ID:        "task-1",
		Text:      "review pull request #code",
		Priority:  PriorityMedium,
		Tags:      []string{"#code"},
		Subtasks:  []Subtask{{ID: "sub-1", Text: "read diff"}},
		CreatedAt: testNow,
	}
	snapshot := valid.Clone()
	Normalize(valid)
	if !reflect.DeepEqual(valid, snapshot) {
		t.Errorf("Normalize changed a valid task:\nbefore: %+v\nafter:  %+v", snapshot, valid)
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("empty document gets a default list", func(t *testing.T) {
		doc := ValidateDocument(map[string]any{}, testNow)
		if len(doc.Lists) != 1 || doc.Lists[DefaultListID] == nil {
			t.Fatalf("expected single default list, got %v", doc.Lists)
		}
		if doc.CurrentList != DefaultListID {
			t.Errorf("currentList = %q, want %q", doc.CurrentList, DefaultListID)
		}
	})

	t.Run("dangling currentList is repaired", func(t *testing.T) {
		doc := ValidateDocument(map[string]any{
			"lists": map[string]any{
				"work": map[string]any{"name": "Work"},
				"home": map[string]any{"name": "Home"},
			},
			"currentList": "gone",
		}, testNow)
		if doc.CurrentList != "home" {
			t.Errorf("currentList = %q, want deterministic repair to %q", doc.CurrentList, "home")
		}
	})

	t.Run("malformed tasks are dropped, not retained", func(t *testing.T) {
		doc := ValidateDocument(map[string]any{
			"lists": map[string]any{
				"work": map[string]any{
					"name": "Work",
					"todos": []any{
						map[string]any{"text": "good task"},
						map[string]any{"priority": "high"},
						"garbage",
					},
				},
			},
		}, testNow)
		if got := len(doc.Lists["work"].Todos); got != 1 {
			t.Errorf("expected 1 surviving task, got %d", got)
		}
	})
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want func(Settings) bool
	}{
		{
			name: "non-object falls back to defaults",
			raw:  "junk",
			want: func(s Settings) bool { return s == DefaultSettings() },
		},
		{
			name: "invalid sortBy keeps default",
			raw:  map[string]any{"sortBy": "random"},
			want: func(s Settings) bool { return s.SortBy == SortManual },
		},
		{
			name: "valid keys merge",
			raw: map[string]any{
				"sortBy":           "dueDate",
				"fullCalendarSync": true,
				"notifications":    false,
			},
			want: func(s Settings) bool {
				return s.SortBy == SortDueDate && s.FullCalendarSync && !s.Notifications
			},
		},
		{
			name: "wrong types ignored per key",
			raw: map[string]any{
				"notifications":      "yes",
				"fullCalendarFolder": 3,
			},
			want: func(s Settings) bool {
				return s.Notifications && s.FullCalendarFolder == DefaultSettings().FullCalendarFolder
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSettings(tt.raw); !tt.want(got) {
				t.Errorf("ValidateSettings() = %+v", got)
			}
		})
	}
}
