package store

import (
	"time"

	"github.com/vantol/checklist/internal/task"
)

// Action identifies the mutation an undo entry reverses.
type Action string

const (
	ActionAdd            Action = "add"
	ActionDelete         Action = "delete"
	ActionComplete       Action = "complete"
	ActionEdit           Action = "edit"
	ActionMove           Action = "move"
	ActionDeleteArchived Action = "delete-archived"
	ActionClearArchived  Action = "clear-archived-batch"
)

// undoEntry is one inverse-operation snapshot. The task field is a deep,
// independently owned clone taken at mutation time; later changes to the live
// task never reach it.
type undoEntry struct {
	action    Action
	task      *task.Task
	listID    string
	fromList  string
	toList    string
	spawnedID string
	batch     map[string][]*task.Task
	timestamp time.Time
}

// pushUndoLocked appends an entry, evicting the oldest beyond the cap.
// Callers hold s.mu.
func (s *Store) pushUndoLocked(entry undoEntry) {
	entry.timestamp = s.now()
	s.undoStack = append(s.undoStack, entry)
	if len(s.undoStack) > s.undoLimit {
		s.undoStack = s.undoStack[len(s.undoStack)-s.undoLimit:]
	}
}

// UndoDepth reports how many undo entries are available.
func (s *Store) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// Undo replays the inverse of the most recent undoable mutation. It fails
// with ErrNothingToUndo on an empty stack and with ErrBusy while any
// completion is still in flight, since undoing against a partially applied
// completion would race it.
func (s *Store) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.inflight) > 0 {
		return ErrBusy
	}
	if len(s.undoStack) == 0 {
		return ErrNothingToUndo
	}

	entry := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]

	switch entry.action {
	case ActionAdd:
		s.undoAddLocked(entry)
	case ActionDelete:
		s.undoDeleteLocked(entry, false)
	case ActionDeleteArchived:
		s.undoDeleteLocked(entry, true)
	case ActionComplete:
		s.undoCompleteLocked(entry)
	case ActionEdit:
		s.undoEditLocked(entry)
	case ActionMove:
		s.undoMoveLocked(entry)
	case ActionClearArchived:
		s.undoClearArchivedLocked(entry)
	}

	s.markDirtyLocked()
	return nil
}

// undoAddLocked removes the added task again, together with any projection it
// gained.
func (s *Store) undoAddLocked(entry undoEntry) {
	listID, index, live := s.findTodo(entry.task.ID)
	if live == nil {
		return
	}
	list := s.doc.Lists[listID]
	list.Todos = append(list.Todos[:index], list.Todos[index+1:]...)
	if s.projector != nil && live.CalendarEventPath != "" {
		s.projector.Remove(live)
	}
}

// undoDeleteLocked restores the deleted snapshot at the front of its original
// partition and re-creates its projection when it carries a due date.
func (s *Store) undoDeleteLocked(entry undoEntry, archived bool) {
	list := s.doc.Lists[entry.listID]
	if list == nil {
		// The owning list is gone; restore into the current list instead of
		// dropping the task.
		list = s.currentList()
	}
	restored := entry.task.Clone()
	if archived {
		list.Archived = append([]*task.Task{restored}, list.Archived...)
	} else {
		list.Todos = append([]*task.Task{restored}, list.Todos...)
	}
	if s.syncEnabledLocked() && restored.DueDate != nil && !archived {
		if err := s.projector.Sync(restored); err != nil {
			s.logger.Printf("calendar sync failed while undoing delete of %s: %v", restored.ID, err)
		}
	}
}

// undoCompleteLocked moves the completed task back from archived to the front
// of todos with its pre-completion state, removes any occurrence the
// completion spawned, and reopens the projection's completion marker.
func (s *Store) undoCompleteLocked(entry undoEntry) {
	if entry.spawnedID != "" {
		if listID, index, spawned := s.findTodo(entry.spawnedID); spawned != nil {
			list := s.doc.Lists[listID]
			list.Todos = append(list.Todos[:index], list.Todos[index+1:]...)
			// The spawned occurrence shares the recurring projection file, so
			// its removal must not delete the file.
		}
	}

	listID, index, live := s.findArchived(entry.task.ID)
	if live == nil {
		return
	}
	list := s.doc.Lists[listID]
	list.Archived = append(list.Archived[:index], list.Archived[index+1:]...)

	restored := entry.task.Clone()
	restored.CompletedAt = nil
	list.Todos = append([]*task.Task{restored}, list.Todos...)

	if s.projector == nil {
		return
	}
	if restored.IsRecurring() {
		if s.syncEnabledLocked() && restored.DueDate != nil {
			if err := s.projector.Sync(restored); err != nil {
				s.logger.Printf("calendar sync failed while undoing completion of %s: %v", restored.ID, err)
			}
		}
		return
	}
	if restored.CalendarEventPath != "" {
		s.projector.MarkCompletion(restored, false)
	}
}

// undoEditLocked swaps the pre-edit snapshot back in and reconciles the
// projection with the restored fields.
func (s *Store) undoEditLocked(entry undoEntry) {
	listID, index, live := s.findTodo(entry.task.ID)
	if live == nil {
		return
	}
	restored := entry.task.Clone()
	s.doc.Lists[listID].Todos[index] = restored

	if s.projector == nil {
		return
	}
	switch {
	case s.syncEnabledLocked() && restored.DueDate != nil:
		if err := s.projector.Sync(restored); err != nil {
			s.logger.Printf("calendar sync failed while undoing edit of %s: %v", restored.ID, err)
		}
	case restored.DueDate == nil && live.CalendarEventPath != "":
		s.projector.Remove(live)
	}
}

// undoMoveLocked transplants the moved task back to the front of its origin
// list.
func (s *Store) undoMoveLocked(entry undoEntry) {
	listID, index, live := s.findTodo(entry.task.ID)
	if live == nil || listID != entry.toList {
		return
	}
	origin := s.doc.Lists[entry.fromList]
	if origin == nil {
		return
	}
	list := s.doc.Lists[listID]
	list.Todos = append(list.Todos[:index], list.Todos[index+1:]...)
	origin.Todos = append([]*task.Task{live}, origin.Todos...)
}

// undoClearArchivedLocked re-appends every cleared task to its list's
// archived partition in one step.
func (s *Store) undoClearArchivedLocked(entry undoEntry) {
	for listID, snapshot := range entry.batch {
		list := s.doc.Lists[listID]
		if list == nil {
			list = s.currentList()
		}
		for _, t := range snapshot {
			list.Archived = append(list.Archived, t.Clone())
		}
	}
}
