package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/vantol/checklist/internal/task"
)

// seedViews builds a store with two lists covering every smart-view bucket.
func seedViews(t *testing.T) *Store {
	t.Helper()
	s, _ := newTestStore()

	workID, err := s.CreateList("Work", "")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}

	overdue := time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)
	today := time.Date(2024, 1, 10, 15, 0, 0, 0, time.Local)
	thisWeek := time.Date(2024, 1, 13, 0, 0, 0, 0, time.Local)
	farOff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	mustAdd := func(text string, opts AddOptions) {
		t.Helper()
		if _, err := s.AddTask(text, opts); err != nil {
			t.Fatalf("AddTask(%q): %v", text, err)
		}
	}

	mustAdd("pay invoice #finance", AddOptions{DueDate: &overdue, ListID: workID})
	mustAdd("standup notes", AddOptions{DueDate: &today, Priority: task.PriorityHigh, ListID: workID})
	mustAdd("water plants #home", AddOptions{DueDate: &thisWeek, ListID: task.DefaultListID})
	mustAdd("plan trip", AddOptions{DueDate: &farOff, ListID: task.DefaultListID})
	mustAdd("someday idea", AddOptions{ListID: task.DefaultListID})
	return s
}

func textsOf(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestSmartViews(t *testing.T) {
	s := seedViews(t)

	tests := []struct {
		view View
		want int
	}{
		{ViewAll, 5},
		{ViewToday, 1},
		{ViewOverdue, 1},
		{ViewWeek, 2}, // today and the in-week date
		{ViewHighPriority, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			got := s.FilteredTasks(tt.view, task.SortManual, "", "")
			if len(got) != tt.want {
				t.Errorf("view %q returned %d tasks (%v), want %d",
					tt.view, len(got), textsOf(got), tt.want)
			}
		})
	}
}

func TestCurrentListView(t *testing.T) {
	s := seedViews(t)
	if err := s.SelectList(task.DefaultListID); err != nil {
		t.Fatalf("SelectList: %v", err)
	}
	got := s.FilteredTasks(ViewCurrent, task.SortManual, "", "")
	if len(got) != 3 {
		t.Errorf("current list view returned %d tasks, want 3", len(got))
	}
}

func TestSearchAndTagFilters(t *testing.T) {
	s := seedViews(t)

	t.Run("search over text", func(t *testing.T) {
		got := s.FilteredTasks(ViewAll, task.SortManual, "INVOICE", "")
		if len(got) != 1 || got[0].Text != "pay invoice #finance" {
			t.Errorf("search results = %v", textsOf(got))
		}
	})

	t.Run("tag filter with and without hash", func(t *testing.T) {
		for _, tag := range []string{"#home", "home"} {
			got := s.FilteredTasks(ViewAll, task.SortManual, "", tag)
			if len(got) != 1 || got[0].Text != "water plants #home" {
				t.Errorf("tag %q results = %v", tag, textsOf(got))
			}
		}
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		got := s.FilteredTasks(ViewAll, task.SortManual, "plants", "#finance")
		if len(got) != 0 {
			t.Errorf("conjunctive filter results = %v", textsOf(got))
		}
	})
}

func TestSortModes(t *testing.T) {
	s, _ := newTestStore()

	d1 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.Local)
	d2 := time.Date(2024, 1, 12, 0, 0, 0, 0, time.Local)

	// A strictly increasing clock so creation times follow insertion order.
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	s.AddTask("low late", AddOptions{Priority: task.PriorityLow, DueDate: &d1})
	s.AddTask("high soon", AddOptions{Priority: task.PriorityHigh, DueDate: &d2})
	s.AddTask("none undated", AddOptions{})

	t.Run("priority", func(t *testing.T) {
		got := textsOf(s.FilteredTasks(ViewCurrent, task.SortPriority, "", ""))
		want := []string{"high soon", "low late", "none undated"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("priority order = %v, want %v", got, want)
		}
	})

	t.Run("dueDate puts undated last", func(t *testing.T) {
		got := textsOf(s.FilteredTasks(ViewCurrent, task.SortDueDate, "", ""))
		want := []string{"high soon", "low late", "none undated"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("dueDate order = %v, want %v", got, want)
		}
	})

	t.Run("created newest first", func(t *testing.T) {
		got := textsOf(s.FilteredTasks(ViewCurrent, task.SortCreated, "", ""))
		want := []string{"none undated", "high soon", "low late"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("created order = %v, want %v", got, want)
		}
	})

	t.Run("sort does not mutate stored order", func(t *testing.T) {
		s.FilteredTasks(ViewCurrent, task.SortPriority, "", "")
		got := textsOf(openTasks(s))
		want := []string{"none undated", "high soon", "low late"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("stored order changed to %v", got)
		}
	})
}

func TestFilteredArchived(t *testing.T) {
	s, _ := newTestStore()
	created, _ := s.AddTask("finished #done", AddOptions{})
	if _, err := s.CompleteTask(created.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	s.AddTask("still open", AddOptions{})

	got := s.FilteredArchived(ViewCurrent, "", "")
	if len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("archived view = %v", textsOf(got))
	}
	if got := s.FilteredArchived(ViewAll, "nothing matches", ""); len(got) != 0 {
		t.Errorf("search must apply to archived views, got %v", textsOf(got))
	}
}

func TestAllTags(t *testing.T) {
	s, _ := newTestStore()
	s.AddTask("one #zeta #alpha", AddOptions{})
	archived, _ := s.AddTask("two #alpha #beta", AddOptions{})
	if _, err := s.CompleteTask(archived.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	got := s.AllTags()
	want := []string{"#alpha", "#beta", "#zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}

	s.AddTask("three #gamma", AddOptions{})
	if got := s.AllTags(); len(got) != 4 {
		t.Errorf("tag cache must refresh after mutation, got %v", got)
	}
}
