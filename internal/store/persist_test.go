package store

import (
	"sync"
	"testing"
	"time"

	"github.com/vantol/checklist/internal/task"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves int
}

func (f *fakeSaver) Save(doc *task.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func TestDebouncedSaveCoalesces(t *testing.T) {
	s, _ := newTestStore()
	saver := &fakeSaver{}
	s.SetSaver(saver)
	s.SetSaveDebounce(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if _, err := s.AddTask("burst", AddOptions{}); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}

	time.Sleep(100 * time.Millisecond)
	if got := saver.count(); got != 1 {
		t.Errorf("rapid mutations must coalesce into one save, got %d", got)
	}
}

func TestFlushWritesImmediately(t *testing.T) {
	s, _ := newTestStore()
	saver := &fakeSaver{}
	s.SetSaver(saver)
	s.SetSaveDebounce(time.Hour)

	if _, err := s.AddTask("urgent", AddOptions{}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if saver.count() != 0 {
		t.Fatal("debounce must delay the save")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saver.count() != 1 {
		t.Error("flush must write the latest state immediately")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if saver.count() != 1 {
		t.Error("flush without unsaved changes must not rewrite")
	}
}

func TestCloseFlushesAndDisposes(t *testing.T) {
	s, _ := newTestStore()
	saver := &fakeSaver{}
	s.SetSaver(saver)
	s.SetSaveDebounce(time.Hour)

	if _, err := s.AddTask("last words", AddOptions{}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if saver.count() != 1 {
		t.Error("close must flush unsaved state")
	}

	if _, err := s.AddTask("too late", AddOptions{}); err != ErrClosed {
		t.Errorf("mutation after close error = %v, want ErrClosed", err)
	}
	if err := s.Undo(); err != ErrClosed {
		t.Errorf("undo after close error = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close must be a no-op, got %v", err)
	}
}
