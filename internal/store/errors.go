package store

import (
	"errors"
	"fmt"
)

// Soft failures callers may surface as transient notices. None of them leave
// the store mutated.
var (
	// ErrNothingToUndo reports an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrBusy reports that an operation conflicts with an in-flight
	// completion; the caller should retry after it settles.
	ErrBusy = errors.New("operation in progress, please wait")

	// ErrEmptyText rejects tasks whose text is empty or whitespace.
	ErrEmptyText = errors.New("task text is empty")

	// ErrLastList refuses to delete a store's only list.
	ErrLastList = errors.New("cannot delete the only list")

	// ErrClosed reports use of a store after Close.
	ErrClosed = errors.New("store is closed")
)

// NotFoundError reports an operation addressing a task or list id that no
// longer resolves. Callers treat it as a no-op condition, not a fault.
type NotFoundError struct {
	Kind string // "task", "archived task", "subtask" or "list"
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
