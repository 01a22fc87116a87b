package store

import (
	"sort"
	"strings"
	"time"

	"github.com/vantol/checklist/internal/dates"
	"github.com/vantol/checklist/internal/task"
)

// View selects which tasks a read operation covers: the current list, or one
// of the cross-list smart views.
type View string

const (
	ViewCurrent      View = ""
	ViewAll          View = "all"
	ViewToday        View = "today"
	ViewOverdue      View = "overdue"
	ViewWeek         View = "week"
	ViewHighPriority View = "highPriority"
)

// IsSmart reports whether the view spans all lists.
func (v View) IsSmart() bool {
	switch v {
	case ViewAll, ViewToday, ViewOverdue, ViewWeek, ViewHighPriority:
		return true
	}
	return false
}

// FilteredTasks returns the open tasks of the view, narrowed by an optional
// tag filter and a case-insensitive substring search over text, notes and
// tags, ordered by sortBy. The result is a fresh slice; the returned tasks
// are the live ones and must not be mutated by callers.
func (s *Store) FilteredTasks(view View, sortBy task.SortMode, search, tag string) []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []*task.Task
	if view.IsSmart() {
		now := s.now()
		for _, list := range s.doc.Lists {
			for _, t := range list.Todos {
				if s.matchesView(t, view, now) {
					tasks = append(tasks, t)
				}
			}
		}
	} else {
		tasks = append(tasks, s.currentList().Todos...)
	}

	tasks = narrow(tasks, search, tag)
	return sortTasks(tasks, sortBy)
}

// FilteredArchived returns the archived tasks of the view, narrowed by the
// same tag and search filters. Archived views keep their stored order.
func (s *Store) FilteredArchived(view View, search, tag string) []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []*task.Task
	if view.IsSmart() {
		for _, list := range s.doc.Lists {
			tasks = append(tasks, list.Archived...)
		}
	} else {
		tasks = append(tasks, s.currentList().Archived...)
	}
	return narrow(tasks, search, tag)
}

// matchesView applies the smart-view predicate. Callers hold s.mu.
func (s *Store) matchesView(t *task.Task, view View, now time.Time) bool {
	switch view {
	case ViewAll:
		return true
	case ViewToday:
		return dates.IsToday(t.DueDate, now)
	case ViewOverdue:
		return dates.IsOverdue(t.DueDate, now)
	case ViewWeek:
		return dates.IsThisWeek(t.DueDate, now)
	case ViewHighPriority:
		return t.Priority == task.PriorityHigh
	}
	return false
}

// narrow applies the tag filter and search query conjunctively.
func narrow(tasks []*task.Task, search, tag string) []*task.Task {
	search = strings.ToLower(strings.TrimSpace(search))
	tag = strings.ToLower(strings.TrimSpace(tag))
	if search == "" && tag == "" {
		return tasks
	}

	var out []*task.Task
	for _, t := range tasks {
		if tag != "" && !hasTag(t, tag) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// hasTag matches stored tags with or without the leading "#".
func hasTag(t *task.Task, tag string) bool {
	tag = strings.TrimPrefix(tag, "#")
	for _, candidate := range t.Tags {
		if strings.TrimPrefix(candidate, "#") == tag {
			return true
		}
	}
	return false
}

func matchesSearch(t *task.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Text), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, query) {
			return true
		}
	}
	return false
}

// AllTags returns every tag used across all lists and both partitions,
// sorted alphabetically. The result is cached until the next mutation.
func (s *Store) AllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tagsCache != nil {
		return s.tagsCache
	}

	seen := map[string]bool{}
	for _, list := range s.doc.Lists {
		for _, t := range list.Todos {
			for _, tag := range t.Tags {
				seen[tag] = true
			}
		}
		for _, t := range list.Archived {
			for _, tag := range t.Tags {
				seen[tag] = true
			}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	s.tagsCache = tags
	return tags
}
