// Package storage persists the task document as a JSON file: tolerant
// validated loads, atomic writes, and an advisory file lock so two processes
// cannot interleave a save.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/vantol/checklist/internal/task"
)

// FileStore reads and writes the persisted document at a fixed path. It
// implements the store's Saver interface.
type FileStore struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

// NewFileStore returns a file store over path. The advisory lock lives next
// to the document.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

// Path returns the document path.
func (f *FileStore) Path() string {
	return f.path
}

// SetClock overrides the clock the validator stamps missing creation times
// with (useful for testing).
func (f *FileStore) SetClock(now func() time.Time) {
	f.now = now
}

// Load reads and validates the document. A missing file yields a fresh
// document; malformed entries inside an otherwise readable file are dropped
// by validation, never fatal. Only an unreadable or syntactically broken file
// returns an error, and callers may start fresh in that case.
func (f *FileStore) Load() (*task.Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return task.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read task document: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse task document: %w", err)
	}

	return task.ValidateDocument(raw, f.now()), nil
}

// Save writes doc atomically: marshal, write to a temp file in the target
// directory, rename over the document. The advisory lock is held for the
// duration of the write.
func (f *FileStore) Save(doc *task.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize task document: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock task document: %w", err)
	}
	defer f.lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".checklist-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write task document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace task document: %w", err)
	}
	return nil
}
