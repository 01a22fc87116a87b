package store

import (
	"strings"
	"time"

	"github.com/vantol/checklist/internal/dates"
	"github.com/vantol/checklist/internal/task"
)

// AddOptions carries the optional attributes of a new task. The zero value
// adds a bare task to the current list.
type AddOptions struct {
	Priority          task.Priority
	DueDate           *time.Time
	StartTime         string // "HH:MM"
	EndTime           string // "HH:MM"
	Recurrence        task.Recurrence
	RecurrenceEndDate *time.Time
	Notes             string
	LinkedNote        string
	ListID            string // empty means the current list
}

// AddTask creates a task from text and opts and inserts it at the front of the
// target list's todos. Tags are derived from the text. Empty or whitespace
// text is rejected.
func (s *Store) AddTask(text string, opts AddOptions) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(text, opts)
}

// QuickAdd creates a task from free text, first extracting a trailing
// date/time clause ("buy milk tomorrow at 3pm") into the due date and start
// time.
func (s *Store) QuickAdd(text string, listID string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := AddOptions{ListID: listID}
	clean, due, ok := dates.ExtractDueDate(text, s.now())
	if ok {
		opts.DueDate = &due
		if dates.HasTime(due) {
			opts.StartTime = dates.FormatClock(due)
		}
		text = clean
	}
	return s.addLocked(text, opts)
}

func (s *Store) addLocked(text string, opts AddOptions) (*task.Task, error) {
	if s.closed {
		return nil, ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	listID := opts.ListID
	if listID == "" {
		listID = s.doc.CurrentList
	}
	list := s.doc.Lists[listID]
	if list == nil {
		return nil, &NotFoundError{Kind: "list", ID: listID}
	}

	t := &task.Task{
		ID:                task.NewID(),
		Text:              text,
		Priority:          opts.Priority,
		DueDate:           opts.DueDate,
		StartTime:         opts.StartTime,
		EndTime:           opts.EndTime,
		Recurrence:        opts.Recurrence,
		RecurrenceEndDate: opts.RecurrenceEndDate,
		Notes:             opts.Notes,
		LinkedNote:        opts.LinkedNote,
		Tags:              task.ExtractTags(text),
		Subtasks:          []task.Subtask{},
		CreatedAt:         s.now(),
	}
	task.Normalize(t)
	applyAllDay(t)

	list.Todos = append([]*task.Task{t}, list.Todos...)

	if s.syncEnabledLocked() && t.DueDate != nil {
		if err := s.projector.Sync(t); err != nil {
			s.logger.Printf("calendar sync failed for new task %s: %v", t.ID, err)
		}
	}

	// Snapshot after sync so the undo entry carries the projection identity.
	s.pushUndoLocked(undoEntry{action: ActionAdd, task: t.Clone(), listID: listID})
	s.markDirtyLocked()
	return t, nil
}

// EditTask applies mutate to a draft copy of the task, validates the result
// and commits it, pushing the pre-edit state onto the undo stack. Tags are
// recomputed from the edited text. The task's id and creation time are
// immutable.
func (s *Store) EditTask(id string, mutate func(*task.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.inflight[id] {
		return ErrBusy
	}

	listID, index, t := s.findTodo(id)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: id}
	}

	draft := t.Clone()
	mutate(draft)
	draft.Text = strings.TrimSpace(draft.Text)
	if draft.Text == "" {
		return ErrEmptyText
	}
	draft.ID = t.ID
	draft.CreatedAt = t.CreatedAt
	task.Normalize(draft)
	draft.Tags = task.ExtractTags(draft.Text)
	applyAllDay(draft)

	s.pushUndoLocked(undoEntry{action: ActionEdit, task: t.Clone(), listID: listID})
	s.doc.Lists[listID].Todos[index] = draft

	if s.projector != nil {
		switch {
		case s.syncEnabledLocked() && draft.DueDate != nil:
			if err := s.projector.Sync(draft); err != nil {
				s.logger.Printf("calendar sync failed for task %s: %v", draft.ID, err)
			}
		case draft.DueDate == nil && draft.CalendarEventPath != "":
			s.projector.Remove(draft)
		}
	}

	s.markDirtyLocked()
	return nil
}

// CompleteTask moves the task from todos to archived, stamps its completion
// time and, for recurring tasks, spawns the next occurrence with a fresh id.
// It returns the spawned task, or nil when there is none. Calendar
// reconciliation runs with the lock released; a duplicate request for the
// same task while one is in flight is rejected with ErrBusy.
func (s *Store) CompleteTask(id string) (*task.Task, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.inflight[id] {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	listID, index, t := s.findTodo(id)
	if t == nil {
		s.mu.Unlock()
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	s.inflight[id] = true
	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()

	entry := undoEntry{action: ActionComplete, task: t.Clone(), listID: listID}

	list := s.doc.Lists[listID]
	list.Todos = append(list.Todos[:index], list.Todos[index+1:]...)
	completedAt := s.now()
	t.CompletedAt = &completedAt
	list.Archived = append([]*task.Task{t}, list.Archived...)

	var spawned *task.Task
	seriesEnded := false
	if t.IsRecurring() && t.DueDate != nil {
		next, ok := dates.NextRecurrence(*t.DueDate, t.Recurrence, t.RecurrenceEndDate, s.now())
		if ok {
			spawned = spawnOccurrence(t, next, s.now())
			list.Todos = append([]*task.Task{spawned}, list.Todos...)
			entry.spawnedID = spawned.ID
		} else {
			seriesEnded = true
		}
	}

	s.pushUndoLocked(entry)
	s.markDirtyLocked()

	syncEnabled := s.syncEnabledLocked()
	completedClone := t.Clone()
	var spawnedClone *task.Task
	if spawned != nil {
		spawnedClone = spawned.Clone()
	}
	s.mu.Unlock()

	if syncEnabled {
		s.reconcileCompletion(completedClone, spawnedClone, seriesEnded)

		s.mu.Lock()
		if spawnedClone != nil {
			if _, _, live := s.findTodo(spawnedClone.ID); live != nil {
				live.CalendarEventPath = spawnedClone.CalendarEventPath
			}
		}
		if _, _, live := s.findArchived(completedClone.ID); live != nil {
			live.CalendarEventPath = completedClone.CalendarEventPath
		}
		s.mu.Unlock()
	}

	return spawned, nil
}

// reconcileCompletion applies the calendar side effects of a completion to
// clones of the affected tasks.
func (s *Store) reconcileCompletion(completed, spawned *task.Task, seriesEnded bool) {
	if completed.IsRecurring() {
		if err := s.projector.RecordCompletedOccurrence(completed); err != nil {
			s.logger.Printf("failed to record completed occurrence for %s: %v", completed.ID, err)
		}
		switch {
		case spawned != nil:
			if err := s.projector.Sync(spawned); err != nil {
				s.logger.Printf("calendar sync failed for spawned task %s: %v", spawned.ID, err)
			}
		case seriesEnded:
			s.projector.Remove(completed)
		}
		return
	}
	s.projector.MarkCompletion(completed, true)
}

// spawnOccurrence builds the next occurrence of a recurring task: fresh id,
// advanced due date, cleared completion and notification state, subtask
// checkmarks reset, calendar identity inherited so the recurring projection
// keeps tracking the series.
func spawnOccurrence(origin *task.Task, next time.Time, now time.Time) *task.Task {
	spawned := origin.Clone()
	spawned.ID = task.NewID()
	spawned.DueDate = &next
	spawned.CompletedAt = nil
	spawned.Notified = false
	spawned.Notified15 = false
	spawned.CreatedAt = now
	for i := range spawned.Subtasks {
		spawned.Subtasks[i].Completed = false
	}
	return spawned
}

// UncompleteTask restores an archived task to the front of its list's todos,
// clearing its completion stamp and patching the projection's completion
// marker back to open.
func (s *Store) UncompleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	listID, index, t := s.findArchived(id)
	if t == nil {
		return &NotFoundError{Kind: "archived task", ID: id}
	}

	list := s.doc.Lists[listID]
	list.Archived = append(list.Archived[:index], list.Archived[index+1:]...)
	t.CompletedAt = nil
	list.Todos = append([]*task.Task{t}, list.Todos...)

	if s.projector != nil && t.CalendarEventPath != "" {
		s.projector.MarkCompletion(t, false)
	}

	s.markDirtyLocked()
	return nil
}

// DeleteTask permanently removes an open task, pushing an inverse undo entry
// and removing its calendar projection.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.inflight[id] {
		return ErrBusy
	}

	listID, index, t := s.findTodo(id)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: id}
	}

	s.pushUndoLocked(undoEntry{action: ActionDelete, task: t.Clone(), listID: listID})

	list := s.doc.Lists[listID]
	list.Todos = append(list.Todos[:index], list.Todos[index+1:]...)

	if s.projector != nil && t.CalendarEventPath != "" {
		s.projector.Remove(t)
	}

	s.markDirtyLocked()
	return nil
}

// DeleteArchivedTask permanently removes an archived task, pushing an inverse
// undo entry and removing its calendar projection.
func (s *Store) DeleteArchivedTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	listID, index, t := s.findArchived(id)
	if t == nil {
		return &NotFoundError{Kind: "archived task", ID: id}
	}

	s.pushUndoLocked(undoEntry{action: ActionDeleteArchived, task: t.Clone(), listID: listID})

	list := s.doc.Lists[listID]
	list.Archived = append(list.Archived[:index], list.Archived[index+1:]...)

	if s.projector != nil && t.CalendarEventPath != "" {
		s.projector.Remove(t)
	}

	s.markDirtyLocked()
	return nil
}

// MoveTaskToList transplants an open task to the front of another list's
// todos, preserving its identity. Moving a task to its own list is a no-op.
func (s *Store) MoveTaskToList(id, targetListID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	sourceListID, index, t := s.findTodo(id)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: id}
	}
	target := s.doc.Lists[targetListID]
	if target == nil {
		return &NotFoundError{Kind: "list", ID: targetListID}
	}
	if sourceListID == targetListID {
		return nil
	}

	source := s.doc.Lists[sourceListID]
	source.Todos = append(source.Todos[:index], source.Todos[index+1:]...)
	target.Todos = append([]*task.Task{t}, target.Todos...)

	s.pushUndoLocked(undoEntry{
		action:   ActionMove,
		task:     t.Clone(),
		fromList: sourceListID,
		toList:   targetListID,
	})
	s.markDirtyLocked()
	return nil
}

// CyclePriority advances the task's priority one step through
// none -> low -> medium -> high -> none and refreshes its projection, whose
// title carries the priority marker.
func (s *Store) CyclePriority(id string) (task.Priority, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	_, _, t := s.findTodo(id)
	if t == nil {
		return "", &NotFoundError{Kind: "task", ID: id}
	}

	t.Priority = t.Priority.Next()
	if s.syncEnabledLocked() && t.DueDate != nil {
		if err := s.projector.Sync(t); err != nil {
			s.logger.Printf("calendar sync failed for task %s: %v", t.ID, err)
		}
	}
	s.markDirtyLocked()
	return t.Priority, nil
}

// AddSubtask appends a subtask to an open task.
func (s *Store) AddSubtask(taskID, text string) (*task.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if runes := []rune(text); len(runes) > task.MaxSubtaskTextLength {
		text = string(runes[:task.MaxSubtaskTextLength])
	}

	_, _, t := s.findTodo(taskID)
	if t == nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}

	t.Subtasks = append(t.Subtasks, task.Subtask{
		ID:        task.NewID(),
		Text:      text,
		CreatedAt: s.now(),
	})
	s.resyncLocked(t)
	s.markDirtyLocked()
	return &t.Subtasks[len(t.Subtasks)-1], nil
}

// ToggleSubtask flips the completion state of a subtask.
func (s *Store) ToggleSubtask(taskID, subtaskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, _, t := s.findTodo(taskID)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			s.resyncLocked(t)
			s.markDirtyLocked()
			return nil
		}
	}
	return &NotFoundError{Kind: "subtask", ID: subtaskID}
}

// DeleteSubtask removes a subtask from its parent task.
func (s *Store) DeleteSubtask(taskID, subtaskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, _, t := s.findTodo(taskID)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			s.resyncLocked(t)
			s.markDirtyLocked()
			return nil
		}
	}
	return &NotFoundError{Kind: "subtask", ID: subtaskID}
}

// resyncLocked refreshes the projection of a task whose body-level fields
// (subtasks, notes) changed. Callers hold s.mu.
func (s *Store) resyncLocked(t *task.Task) {
	if !s.syncEnabledLocked() || t.DueDate == nil {
		return
	}
	if err := s.projector.Sync(t); err != nil {
		s.logger.Printf("calendar sync failed for task %s: %v", t.ID, err)
	}
}

// ClearArchived empties the archived partition of the current list, or of
// every list when allLists is set, batching the removed tasks into a single
// undo entry. Calendar files of cleared tasks are kept so completed history
// stays on the calendar. It returns how many tasks were cleared.
func (s *Store) ClearArchived(allLists bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	batch := map[string][]*task.Task{}
	count := 0
	clear := func(listID string, list *task.List) {
		if len(list.Archived) == 0 {
			return
		}
		snapshot := make([]*task.Task, len(list.Archived))
		for i, t := range list.Archived {
			snapshot[i] = t.Clone()
		}
		batch[listID] = snapshot
		count += len(list.Archived)
		list.Archived = nil
	}

	if allLists {
		for id, list := range s.doc.Lists {
			clear(id, list)
		}
	} else {
		clear(s.doc.CurrentList, s.currentList())
	}

	if count == 0 {
		return 0, nil
	}
	s.pushUndoLocked(undoEntry{action: ActionClearArchived, batch: batch})
	s.markDirtyLocked()
	return count, nil
}

// CreateList adds a new named list and makes it current, returning its id.
func (s *Store) CreateList(name, color string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyText
	}
	if runes := []rune(name); len(runes) > task.MaxListNameLength {
		name = string(runes[:task.MaxListNameLength])
	}

	id := task.NewID()
	s.doc.Lists[id] = &task.List{Name: name, Color: color}
	s.doc.CurrentList = id
	s.markDirtyLocked()
	return id, nil
}

// RenameList updates a list's name and color. An empty color clears it.
func (s *Store) RenameList(listID, name, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	list := s.doc.Lists[listID]
	if list == nil {
		return &NotFoundError{Kind: "list", ID: listID}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyText
	}
	if runes := []rune(name); len(runes) > task.MaxListNameLength {
		name = string(runes[:task.MaxListNameLength])
	}
	list.Name = name
	list.Color = color
	s.markDirtyLocked()
	return nil
}

// DeleteList removes a list together with every task it owns, deleting their
// calendar projections. Deleting the only remaining list is refused, and the
// current-list reference is repaired when it pointed at the removed list.
func (s *Store) DeleteList(listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	list := s.doc.Lists[listID]
	if list == nil {
		return &NotFoundError{Kind: "list", ID: listID}
	}
	if len(s.doc.Lists) == 1 {
		return ErrLastList
	}

	if s.projector != nil {
		for _, t := range list.Todos {
			if t.CalendarEventPath != "" {
				s.projector.Remove(t)
			}
		}
		for _, t := range list.Archived {
			if t.CalendarEventPath != "" {
				s.projector.Remove(t)
			}
		}
	}

	delete(s.doc.Lists, listID)
	if s.doc.CurrentList == listID {
		s.doc.CurrentList = smallestListID(s.doc.Lists)
	}
	s.markDirtyLocked()
	return nil
}

// smallestListID picks a deterministic surviving list id.
func smallestListID(lists map[string]*task.List) string {
	best := ""
	for id := range lists {
		if best == "" || id < best {
			best = id
		}
	}
	return best
}

// ReorderTask moves the dragged task to the position currently occupied by
// the target task. Both must live in the same list's todos; a cross-list pair
// is silently ignored.
func (s *Store) ReorderTask(draggedID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if draggedID == targetID {
		return nil
	}

	draggedList, draggedIndex, dragged := s.findTodo(draggedID)
	targetList, targetIndex, target := s.findTodo(targetID)
	if dragged == nil || target == nil || draggedList != targetList {
		return nil
	}

	list := s.doc.Lists[draggedList]
	list.Todos = append(list.Todos[:draggedIndex], list.Todos[draggedIndex+1:]...)
	list.Todos = append(list.Todos[:targetIndex], append([]*task.Task{dragged}, list.Todos[targetIndex:]...)...)
	s.markDirtyLocked()
	return nil
}

// applyAllDay derives the all-day flag: a due date at the midnight sentinel
// with no start time means all day.
func applyAllDay(t *task.Task) {
	if t.DueDate == nil {
		t.AllDay = false
		return
	}
	t.AllDay = !dates.HasTime(*t.DueDate) && t.StartTime == ""
}
