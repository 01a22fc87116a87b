package task

import (
	"testing"
	"time"
)

func TestCloneIsIndependent(t *testing.T) {
	due := time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local)
	completed := time.Date(2024, 1, 16, 12, 0, 0, 0, time.Local)
	original := &Task{
		ID:          "task-1",
		Text:        "original",
		Priority:    PriorityHigh,
		DueDate:     &due,
		CompletedAt: &completed,
		Tags:        []string{"#one"},
		Subtasks:    []Subtask{{ID: "sub-1", Text: "step"}},
	}

	clone := original.Clone()

	wantDue := due
	original.Text = "mutated"
	*original.DueDate = original.DueDate.AddDate(0, 0, 5)
	original.Tags[0] = "#changed"
	original.Subtasks[0].Completed = true
	original.CompletedAt = nil

	if clone.Text != "original" {
		t.Error("clone text affected by mutation")
	}
	if !clone.DueDate.Equal(wantDue) {
		t.Error("clone due date shares storage with the original")
	}
	if clone.Tags[0] != "#one" {
		t.Error("clone tags share storage with the original")
	}
	if clone.Subtasks[0].Completed {
		t.Error("clone subtasks share storage with the original")
	}
	if clone.CompletedAt == nil || !clone.CompletedAt.Equal(completed) {
		t.Error("clone completedAt lost")
	}
}

func TestCloneNil(t *testing.T) {
	var missing *Task
	if missing.Clone() != nil {
		t.Error("cloning nil must yield nil")
	}
}
