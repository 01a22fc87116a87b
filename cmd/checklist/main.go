package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantol/checklist/internal/calendar"
	"github.com/vantol/checklist/internal/config"
	"github.com/vantol/checklist/internal/dates"
	"github.com/vantol/checklist/internal/storage"
	"github.com/vantol/checklist/internal/store"
	"github.com/vantol/checklist/internal/task"
)

// app bundles the wired engine for one command invocation.
type app struct {
	cfg       *config.Config
	files     *storage.FileStore
	store     *store.Store
	projector *calendar.Projector
}

// openApp loads the config and document and wires the engine. A corrupted
// document degrades to a fresh one with a warning rather than refusing to
// start.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	files := storage.NewFileStore(cfg.DataPath())
	doc, err := files.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; starting with an empty document\n", err)
		doc = task.NewDocument()
	}

	logger := log.New(os.Stderr, "checklist: ", 0)

	projector := calendar.New(calendar.NewDirFS(cfg.VaultDir()), doc.Settings.FullCalendarFolder)
	projector.SetLogger(logger)

	s := store.New(doc)
	s.SetSaver(files)
	s.SetProjector(projector)
	s.SetLogger(logger)

	return &app{cfg: cfg, files: files, store: s, projector: projector}, nil
}

func (a *app) close() error {
	return a.store.Close()
}

// resolveTask expands a task id or unique id prefix across all lists and
// partitions.
func (a *app) resolveTask(ref string) (string, error) {
	if _, ok := a.store.TaskByID(ref); ok {
		return ref, nil
	}
	var matches []string
	doc := a.store.Document()
	for _, list := range doc.Lists {
		for _, t := range append(append([]*task.Task{}, list.Todos...), list.Archived...) {
			if strings.HasPrefix(t.ID, ref) {
				matches = append(matches, t.ID)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveList accepts a list id or a case-insensitive list name.
func (a *app) resolveList(ref string) (string, error) {
	doc := a.store.Document()
	if doc.Lists[ref] != nil {
		return ref, nil
	}
	for id, list := range doc.Lists {
		if strings.EqualFold(list.Name, ref) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no list matches %q", ref)
}

var rootCmd = &cobra.Command{
	Use:           "checklist",
	Short:         "checklist - task lists with calendar projection",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	listFlag     string
	priorityFlag string
	notesFlag    string
	viewFlag     string
	sortFlag     string
	searchFlag   string
	tagFlag      string
	archivedFlag bool
	allListsFlag bool
	colorFlag    string
)

var addCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add a task, extracting a trailing date clause (\"buy milk tomorrow at 3pm\")",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		listID := ""
		if listFlag != "" {
			if listID, err = a.resolveList(listFlag); err != nil {
				return err
			}
		}

		t, err := a.store.QuickAdd(strings.Join(args, " "), listID)
		if err != nil {
			return err
		}
		if priorityFlag != "" {
			err = a.store.EditTask(t.ID, func(t *task.Task) {
				t.Priority = task.Priority(priorityFlag)
			})
			if err != nil {
				return err
			}
		}
		if notesFlag != "" {
			err = a.store.EditTask(t.ID, func(t *task.Task) {
				t.Notes = notesFlag
			})
			if err != nil {
				return err
			}
		}
		fmt.Printf("added %s\n", shortRef(t))
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks of the current list or a smart view",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		view := store.View(viewFlag)
		if view != store.ViewCurrent && !view.IsSmart() {
			return fmt.Errorf("unknown view %q (all, today, overdue, week, highPriority)", viewFlag)
		}

		sortBy := a.store.Settings().SortBy
		if sortFlag != "" {
			sortBy = task.SortMode(sortFlag)
		}

		if archivedFlag {
			for _, t := range a.store.FilteredArchived(view, searchFlag, tagFlag) {
				printTask(t, true)
			}
			return nil
		}
		for _, t := range a.store.FilteredTasks(view, sortBy, searchFlag, tagFlag) {
			printTask(t, false)
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Complete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		spawned, err := a.store.CompleteTask(id)
		if err != nil {
			return err
		}
		if spawned != nil {
			fmt.Printf("completed; next occurrence due %s\n", dates.FormatDue(spawned.DueDate, time.Now()))
		} else {
			fmt.Println("completed")
		}
		return nil
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task>",
	Short: "Restore an archived task to its list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		if err := a.store.UncompleteTask(id); err != nil {
			return err
		}
		fmt.Println("restored")
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <task>",
	Short: "Delete a task permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		if err := a.store.DeleteTask(id); err != nil {
			if store.IsNotFound(err) {
				err = a.store.DeleteArchivedTask(id)
			}
			if err != nil {
				return err
			}
		}
		fmt.Println("deleted")
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <task> <list>",
	Short: "Move a task to another list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		listID, err := a.resolveList(args[1])
		if err != nil {
			return err
		}
		if err := a.store.MoveTaskToList(id, listID); err != nil {
			return err
		}
		fmt.Println("moved")
		return nil
	},
}

var priorityCmd = &cobra.Command{
	Use:   "priority <task>",
	Short: "Cycle a task's priority (none -> low -> medium -> high)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		p, err := a.store.CyclePriority(id)
		if err != nil {
			return err
		}
		fmt.Printf("priority: %s\n", p)
		return nil
	},
}

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage subtasks",
}

var subAddCmd = &cobra.Command{
	Use:   "add <task> <text>...",
	Short: "Add a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		if _, err := a.store.AddSubtask(id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Println("subtask added")
		return nil
	},
}

var subToggleCmd = &cobra.Command{
	Use:   "toggle <task> <subtask-id>",
	Short: "Toggle a subtask's completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		if err := a.store.ToggleSubtask(id, args[1]); err != nil {
			return err
		}
		fmt.Println("toggled")
		return nil
	},
}

var subRmCmd = &cobra.Command{
	Use:   "rm <task> <subtask-id>",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		if err := a.store.DeleteSubtask(id, args[1]); err != nil {
			return err
		}
		fmt.Println("subtask deleted")
		return nil
	},
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show all lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		doc := a.store.Document()
		for id, list := range doc.Lists {
			marker := " "
			if id == doc.CurrentList {
				marker = "*"
			}
			fmt.Printf("%s %-36s %s (%d open, %d done)\n", marker, id, list.Name, len(list.Todos), len(list.Archived))
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage lists",
}

var listCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a list and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.store.CreateList(args[0], colorFlag)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", id)
		return nil
	},
}

var listRenameCmd = &cobra.Command{
	Use:   "rename <list> <name>",
	Short: "Rename a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveList(args[0])
		if err != nil {
			return err
		}
		if err := a.store.RenameList(id, args[1], colorFlag); err != nil {
			return err
		}
		fmt.Println("renamed")
		return nil
	},
}

var listRmCmd = &cobra.Command{
	Use:   "rm <list>",
	Short: "Delete a list and every task it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveList(args[0])
		if err != nil {
			return err
		}
		if err := a.store.DeleteList(id); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

var listSelectCmd = &cobra.Command{
	Use:   "select <list>",
	Short: "Make a list current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.resolveList(args[0])
		if err != nil {
			return err
		}
		if err := a.store.SelectList(id); err != nil {
			return err
		}
		fmt.Println("selected")
		return nil
	},
}

var clearArchivedCmd = &cobra.Command{
	Use:   "clear-archived",
	Short: "Empty the archived partition (one undo restores everything)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		count, err := a.store.ClearArchived(allListsFlag)
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d archived tasks\n", count)
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent mutation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Undo(); err != nil {
			if errors.Is(err, store.ErrNothingToUndo) {
				fmt.Println("nothing to undo")
				return nil
			}
			return err
		}
		fmt.Println("undone")
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Project every due-dated task into the calendar folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		count := a.projector.SyncAll(a.store.Document())
		fmt.Printf("synced %d tasks\n", count)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the due-task notification scan until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		notifier := store.NewNotifier(a.store)
		notifier.SetLogger(log.New(os.Stderr, "NOTIF: ", log.LstdFlags))
		if a.cfg.Notifications.Schedule != "" {
			notifier.SetSchedule(a.cfg.Notifications.Schedule)
		}
		if err := notifier.Start(); err != nil {
			return err
		}
		defer notifier.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func shortRef(t *task.Task) string {
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}

func printTask(t *task.Task, archived bool) {
	mark := "[ ]"
	if archived {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s", mark, shortRef(t), t.Text)
	if t.Priority != task.PriorityNone && t.Priority != "" {
		line += "  !" + string(t.Priority)
	}
	if t.DueDate != nil {
		line += "  (" + dates.FormatDue(t.DueDate, time.Now()) + ")"
	}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, sub := range t.Subtasks {
			if sub.Completed {
				done++
			}
		}
		line += fmt.Sprintf("  [%d/%d]", done, len(t.Subtasks))
	}
	fmt.Println(line)
}

func init() {
	addCmd.Flags().StringVarP(&listFlag, "list", "l", "", "Target list (id or name)")
	addCmd.Flags().StringVarP(&priorityFlag, "priority", "p", "", "Priority (high, medium, low)")
	addCmd.Flags().StringVarP(&notesFlag, "notes", "n", "", "Notes")

	lsCmd.Flags().StringVarP(&viewFlag, "view", "v", "", "Smart view (all, today, overdue, week, highPriority)")
	lsCmd.Flags().StringVarP(&sortFlag, "sort", "s", "", "Sort mode (manual, priority, dueDate, created)")
	lsCmd.Flags().StringVar(&searchFlag, "search", "", "Substring search over text, notes and tags")
	lsCmd.Flags().StringVarP(&tagFlag, "tag", "t", "", "Tag filter")
	lsCmd.Flags().BoolVarP(&archivedFlag, "archived", "a", false, "Show archived tasks")

	clearArchivedCmd.Flags().BoolVar(&allListsFlag, "all", false, "Clear every list, not just the current one")

	listCreateCmd.Flags().StringVar(&colorFlag, "color", "", "List color")
	listRenameCmd.Flags().StringVar(&colorFlag, "color", "", "List color")

	subCmd.AddCommand(subAddCmd, subToggleCmd, subRmCmd)
	listCmd.AddCommand(listCreateCmd, listRenameCmd, listRmCmd, listSelectCmd)
	rootCmd.AddCommand(addCmd, lsCmd, doneCmd, undoneCmd, rmCmd, mvCmd, priorityCmd,
		subCmd, listsCmd, listCmd, clearArchivedCmd, undoCmd, syncCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
