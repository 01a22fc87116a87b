package store

import (
	"sort"

	"github.com/vantol/checklist/internal/task"
)

// sortTasks orders tasks by mode into a fresh slice, leaving the input
// untouched. Manual keeps the stored order, which reorder mutates directly.
func sortTasks(tasks []*task.Task, mode task.SortMode) []*task.Task {
	out := make([]*task.Task, len(tasks))
	copy(out, tasks)

	switch mode {
	case task.SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case task.SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	case task.SortCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
