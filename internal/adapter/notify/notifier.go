// Package notify renders user notifications as structured log entries and
// keeps the most recent ones for clients polling the API.
package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

const DefaultCapacity = 100

type LogNotifier struct {
	logger log.FieldLogger

	mu   sync.Mutex
	ring []domain.Notification
	next int
	full bool
}

func NewLogNotifier(logger log.FieldLogger, capacity int) *LogNotifier {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LogNotifier{
		logger: logger,
		ring:   make([]domain.Notification, capacity),
	}
}

func (n *LogNotifier) Notify(note domain.Notification) {
	entry := n.logger.WithFields(log.Fields{
		"notification": note.Title,
		"severity":     note.Severity,
	})
	switch note.Severity {
	case domain.SeverityError:
		entry.Error(note.Description)
	case domain.SeverityWarning:
		entry.Warn(note.Description)
	default:
		entry.Info(note.Description)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.ring[n.next] = note
	n.next = (n.next + 1) % len(n.ring)
	if n.next == 0 {
		n.full = true
	}
}

// Recent returns retained notifications, newest first.
func (n *LogNotifier) Recent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := n.next
	if n.full {
		count = len(n.ring)
	}

	out := make([]domain.Notification, 0, count)
	for i := 1; i <= count; i++ {
		idx := (n.next - i + len(n.ring)) % len(n.ring)
		out = append(out, n.ring[idx])
	}
	return out
}
