package store

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/robfig/cron/v3"

	"github.com/vantol/checklist/internal/dates"
	"github.com/vantol/checklist/internal/task"
)

// DefaultScanSchedule is the cron spec for the periodic due-task scan.
const DefaultScanSchedule = "@every 1m"

// NotifyFunc raises one desktop notification.
type NotifyFunc func(title, message string) error

// Notifier owns the background due-task scan. It fires a due-today notice
// during the 9 o'clock hour for each task due that day, and a separate notice
// once a timed task comes within 15 minutes of its start. Both are
// remembered per task so restarts of the scan never re-notify.
type Notifier struct {
	store    *Store
	cron     *cron.Cron
	schedule string
	notify   NotifyFunc
	logger   *log.Logger
}

// NewNotifier returns a stopped notifier over s, delivering through the
// desktop notification daemon.
func NewNotifier(s *Store) *Notifier {
	return &Notifier{
		store:    s,
		cron:     cron.New(),
		schedule: DefaultScanSchedule,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: log.New(io.Discard, "NOTIF: ", log.LstdFlags),
	}
}

// SetNotifyFunc replaces the delivery function (useful for testing).
func (n *Notifier) SetNotifyFunc(fn NotifyFunc) {
	n.notify = fn
}

// SetLogger directs scan failures to logger.
func (n *Notifier) SetLogger(logger *log.Logger) {
	n.logger = logger
}

// SetSchedule overrides the scan cadence with a cron spec.
func (n *Notifier) SetSchedule(spec string) {
	n.schedule = spec
}

// Start schedules the periodic scan. An immediate scan runs first so a
// freshly started process does not wait a full interval.
func (n *Notifier) Start() error {
	if _, err := n.cron.AddFunc(n.schedule, n.Scan); err != nil {
		return fmt.Errorf("failed to schedule notification scan: %w", err)
	}
	n.cron.Start()
	n.Scan()
	return nil
}

// Stop cancels the scheduled scan and waits for a running one to finish.
func (n *Notifier) Stop() {
	ctx := n.cron.Stop()
	<-ctx.Done()
}

// pending is a notification decided under the store lock and delivered after
// it is released.
type pending struct {
	title   string
	message string
}

// Scan walks every open task once, marks the notification flags of those
// that qualify, and delivers the notices. Flag mutation happens under the
// store lock; delivery does not.
func (n *Notifier) Scan() {
	s := n.store

	s.mu.Lock()
	if s.closed || !s.doc.Settings.Notifications {
		s.mu.Unlock()
		return
	}

	now := s.now()
	var queue []pending
	changed := false

	for _, list := range s.doc.Lists {
		for _, t := range list.Todos {
			if t.DueDate == nil {
				continue
			}
			if !t.Notified && dates.IsToday(t.DueDate, now) && now.Hour() == 9 {
				t.Notified = true
				changed = true
				queue = append(queue, pending{
					title:   "Task due today",
					message: noticeText(t),
				})
			}
			if due, ok := dueMoment(t); ok && !t.Notified15 {
				until := due.Sub(now)
				if until >= 0 && until <= 15*time.Minute {
					t.Notified15 = true
					changed = true
					queue = append(queue, pending{
						title:   "Task due in " + strconv.Itoa(int(until.Minutes())+1) + " min",
						message: noticeText(t),
					})
				}
			}
		}
	}

	if changed {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	for _, p := range queue {
		if err := n.notify(p.title, p.message); err != nil {
			n.logger.Printf("failed to deliver notification: %v", err)
		}
	}
}

// dueMoment resolves the exact due instant of a timed task: the due date's
// day combined with its start time, or the due date itself when it carries a
// non-midnight clock. All-day tasks have no due moment.
func dueMoment(t *task.Task) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	due := *t.DueDate
	if t.StartTime != "" {
		parts := strings.SplitN(t.StartTime, ":", 2)
		if len(parts) == 2 {
			hours, err1 := strconv.Atoi(parts[0])
			minutes, err2 := strconv.Atoi(parts[1])
			if err1 == nil && err2 == nil {
				return time.Date(due.Year(), due.Month(), due.Day(), hours, minutes, 0, 0, time.Local), true
			}
		}
	}
	if dates.HasTime(due) {
		return due, true
	}
	return time.Time{}, false
}

func noticeText(t *task.Task) string {
	if runes := []rune(t.Text); len(runes) > 120 {
		return string(runes[:120]) + "…"
	}
	return t.Text
}
