// Package store owns the task collections and implements every mutation
// operation, filtering and sorting, the undo log, debounced persistence and
// the due-task notification scan. The store itself performs no file I/O:
// calendar reconciliation goes through the Projector interface and document
// persistence through the Saver interface, both invoked after the pure state
// mutation settles.
package store

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/vantol/checklist/internal/task"
)

// Projector is the calendar reconciliation surface the store drives after
// mutations. Implementations must tolerate tasks without due dates.
type Projector interface {
	Sync(t *task.Task) error
	Remove(t *task.Task) error
	MarkCompletion(t *task.Task, completed bool) error
	RecordCompletedOccurrence(t *task.Task) error
}

// Saver persists the document. The store calls it with the live document
// while holding its lock; implementations must not call back into the store.
type Saver interface {
	Save(doc *task.Document) error
}

// DefaultUndoLimit bounds the undo stack; the oldest entry is discarded
// beyond it.
const DefaultUndoLimit = 50

// DefaultSaveDebounce is the quiescence interval for coalescing saves.
const DefaultSaveDebounce = 150 * time.Millisecond

// Store is the task-state engine root. All exported methods are safe for
// use from the notification scanner and save timer goroutines; mutations are
// serialized by an internal lock.
type Store struct {
	mu  sync.Mutex
	doc *task.Document

	undoStack []undoEntry
	undoLimit int

	projector Projector
	saver     Saver
	logger    *log.Logger
	now       func() time.Time

	inflight  map[string]bool
	saveTimer *time.Timer
	debounce  time.Duration
	dirty     bool
	closed    bool

	tagsCache []string
}

// New returns a store over doc. A nil doc starts a fresh document with a
// single default list.
func New(doc *task.Document) *Store {
	if doc == nil {
		doc = task.NewDocument()
	}
	return &Store{
		doc:       doc,
		undoLimit: DefaultUndoLimit,
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
		inflight:  map[string]bool{},
		debounce:  DefaultSaveDebounce,
	}
}

// SetProjector wires calendar reconciliation. Without one, calendar side
// effects are skipped entirely.
func (s *Store) SetProjector(p Projector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projector = p
}

// SetSaver wires document persistence. Without one, saves are skipped.
func (s *Store) SetSaver(saver Saver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver = saver
}

// SetLogger directs the store's soft-failure reports to logger.
func (s *Store) SetLogger(logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetClock overrides the store's clock (useful for testing).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetUndoLimit changes the undo stack cap.
func (s *Store) SetUndoLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.undoLimit = n
	}
}

// Document exposes the live document for persistence and read-only callers.
func (s *Store) Document() *task.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Settings returns a copy of the document's settings.
func (s *Store) Settings() task.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings
}

// UpdateSettings replaces the document's settings.
func (s *Store) UpdateSettings(settings task.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings = settings
	s.markDirtyLocked()
}

// CurrentListID returns the id of the currently selected list.
func (s *Store) CurrentListID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CurrentList
}

// SelectList makes listID the current list.
func (s *Store) SelectList(listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Lists[listID] == nil {
		return &NotFoundError{Kind: "list", ID: listID}
	}
	s.doc.CurrentList = listID
	s.markDirtyLocked()
	return nil
}

// currentList returns the selected list, falling back to the default list if
// the reference dangles. Callers hold s.mu.
func (s *Store) currentList() *task.List {
	if l := s.doc.Lists[s.doc.CurrentList]; l != nil {
		return l
	}
	return s.doc.Lists[task.DefaultListID]
}

// listIDForTask returns the id of the list owning taskID in either
// partition, or "". Callers hold s.mu.
func (s *Store) listIDForTask(taskID string) string {
	for id, list := range s.doc.Lists {
		for _, t := range list.Todos {
			if t.ID == taskID {
				return id
			}
		}
		for _, t := range list.Archived {
			if t.ID == taskID {
				return id
			}
		}
	}
	return ""
}

// findTodo locates an open task across all lists. Callers hold s.mu.
func (s *Store) findTodo(taskID string) (listID string, index int, t *task.Task) {
	for id, list := range s.doc.Lists {
		for i, candidate := range list.Todos {
			if candidate.ID == taskID {
				return id, i, candidate
			}
		}
	}
	return "", -1, nil
}

// findArchived locates an archived task across all lists. Callers hold s.mu.
func (s *Store) findArchived(taskID string) (listID string, index int, t *task.Task) {
	for id, list := range s.doc.Lists {
		for i, candidate := range list.Archived {
			if candidate.ID == taskID {
				return id, i, candidate
			}
		}
	}
	return "", -1, nil
}

// TaskByID returns the task with the given id from any list and partition.
func (s *Store) TaskByID(taskID string) (*task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, t := s.findTodo(taskID); t != nil {
		return t, true
	}
	if _, _, t := s.findArchived(taskID); t != nil {
		return t, true
	}
	return nil, false
}

// syncEnabledLocked reports whether calendar side effects apply. Callers
// hold s.mu.
func (s *Store) syncEnabledLocked() bool {
	return s.projector != nil && s.doc.Settings.FullCalendarSync
}

// markDirtyLocked flags unsaved changes, invalidates caches and arms the
// debounced save. Callers hold s.mu.
func (s *Store) markDirtyLocked() {
	s.dirty = true
	s.tagsCache = nil
	s.scheduleSaveLocked()
}
