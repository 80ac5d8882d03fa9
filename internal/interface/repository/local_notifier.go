package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
)

// DeliverFunc shows a notification to the user
type DeliverFunc func(title, body string)

// LocalNotifier schedules reminders on in-process timers.
// Pending reminders are lost when the process exits.
type LocalNotifier struct {
	mu      sync.Mutex
	pending map[string]*pendingReminder
	deliver DeliverFunc
	logger  logger.Logger
	now     func() time.Time
}

type pendingReminder struct {
	reminder entity.Reminder
	timer    *time.Timer
}

var _ repository.Notifier = (*LocalNotifier)(nil)

// NewLocalNotifier creates a notifier. A nil deliver logs the notification.
func NewLocalNotifier(deliver DeliverFunc, logger logger.Logger) *LocalNotifier {
	n := &LocalNotifier{
		pending: make(map[string]*pendingReminder),
		logger:  logger,
		now:     time.Now,
	}
	if deliver == nil {
		deliver = func(title, body string) {
			n.logger.Info("Notification", "title", title, "body", body)
		}
	}
	n.deliver = deliver
	return n
}

// Schedule arms a timer for the reminder, replacing any pending one with the same id
func (n *LocalNotifier) Schedule(_ context.Context, reminder entity.Reminder) error {
	delay := reminder.FireAt.Sub(n.now())
	if delay < 0 {
		delay = 0
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if existing, ok := n.pending[reminder.ID]; ok {
		existing.timer.Stop()
	}

	p := &pendingReminder{reminder: reminder}
	p.timer = time.AfterFunc(delay, func() { n.fire(reminder.ID, p) })
	n.pending[reminder.ID] = p

	n.logger.Debug("Reminder scheduled", "id", reminder.ID, "fireAt", reminder.FireAt)
	return nil
}

func (n *LocalNotifier) fire(id string, p *pendingReminder) {
	n.mu.Lock()
	current, ok := n.pending[id]
	if !ok || current != p {
		n.mu.Unlock()
		return
	}
	delete(n.pending, id)
	n.mu.Unlock()

	n.deliver(p.reminder.Title, p.reminder.Body)
}

// FireNow delivers a notification immediately
func (n *LocalNotifier) FireNow(_ context.Context, title, body string) error {
	n.deliver(title, body)
	return nil
}

// Cancel stops pending reminders. Unknown ids are ignored.
func (n *LocalNotifier) Cancel(_ context.Context, ids []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, id := range ids {
		if p, ok := n.pending[id]; ok {
			p.timer.Stop()
			delete(n.pending, id)
			n.logger.Debug("Reminder cancelled", "id", id)
		}
	}
	return nil
}

// Pending returns the reminders that have not fired yet, ordered by fire time
func (n *LocalNotifier) Pending() []entity.Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]entity.Reminder, 0, len(n.pending))
	for _, p := range n.pending {
		out = append(out, p.reminder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Stop cancels every pending reminder
func (n *LocalNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, p := range n.pending {
		p.timer.Stop()
		delete(n.pending, id)
	}
}
