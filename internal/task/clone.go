package task

import "time"

// Clone returns a deep, independently-owned copy of t. Undo snapshots depend
// on this: later mutation of the live task must never reach the copy.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.DueDate = cloneTime(t.DueDate)
	c.RecurrenceEndDate = cloneTime(t.RecurrenceEndDate)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.Tags = append([]string(nil), t.Tags...)
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
