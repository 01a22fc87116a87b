package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vantol/checklist/internal/task"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	f := NewFileStore(filepath.Join(t.TempDir(), "checklist.json"))
	f.SetClock(func() time.Time {
		return time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)
	})
	return f
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	f := testStore(t)
	doc, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Lists) != 1 || doc.Lists[task.DefaultListID] == nil {
		t.Error("missing file must yield a fresh document with the default list")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := testStore(t)
	doc := task.NewDocument()
	due := time.Date(2024, 2, 1, 15, 0, 0, 0, time.Local)
	doc.Lists[task.DefaultListID].Todos = []*task.Task{
		{
			ID:        "task-1",
			Text:      "persisted #roundtrip",
			Priority:  task.PriorityHigh,
			DueDate:   &due,
			StartTime: "15:00",
			Tags:      []string{"#roundtrip"},
			Subtasks:  []task.Subtask{{ID: "sub-1", Text: "step one"}},
			CreatedAt: time.Date(2024, 1, 9, 8, 0, 0, 0, time.Local),
		},
	}
	doc.Settings.FullCalendarSync = true

	if err := f.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.Lists[task.DefaultListID].Todos
	if len(got) != 1 {
		t.Fatalf("loaded %d tasks, want 1", len(got))
	}
	if got[0].ID != "task-1" || got[0].Text != "persisted #roundtrip" {
		t.Errorf("task fields lost: %+v", got[0])
	}
	if got[0].DueDate == nil || !got[0].DueDate.Equal(due) {
		t.Errorf("dueDate = %v, want %v", got[0].DueDate, due)
	}
	if len(got[0].Subtasks) != 1 || got[0].Subtasks[0].Text != "step one" {
		t.Errorf("subtasks lost: %v", got[0].Subtasks)
	}
	if !loaded.Settings.FullCalendarSync {
		t.Error("settings lost")
	}
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	f := testStore(t)
	raw := `{
		"lists": {
			"default": {
				"name": "My Tasks",
				"todos": [
					{"text": "good"},
					{"priority": "high"},
					42
				]
			}
		},
		"currentList": "nowhere",
		"settings": {"sortBy": "bogus", "notifications": "loud"}
	}`
	if err := os.WriteFile(f.Path(), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(doc.Lists["default"].Todos); got != 1 {
		t.Errorf("surviving tasks = %d, want 1", got)
	}
	if doc.CurrentList != "default" {
		t.Errorf("dangling currentList must be repaired, got %q", doc.CurrentList)
	}
	if doc.Settings.SortBy != task.SortManual || !doc.Settings.Notifications {
		t.Errorf("malformed settings must fall back to defaults: %+v", doc.Settings)
	}
}

func TestLoadBrokenJSONErrors(t *testing.T) {
	f := testStore(t)
	if err := os.WriteFile(f.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Load(); err == nil {
		t.Error("syntactically broken document must surface an error")
	}
}

func TestSaveIsAtomic(t *testing.T) {
	f := testStore(t)
	if err := f.Save(task.NewDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(f.Path()) && e.Name() != filepath.Base(f.Path())+".lock" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}

	// A second save replaces the document in place.
	doc := task.NewDocument()
	doc.Lists[task.DefaultListID].Name = "Renamed"
	if err := f.Save(doc); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Lists[task.DefaultListID].Name != "Renamed" {
		t.Error("second save must replace the previous document")
	}
}
