package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

// DefaultNotificationLimit is the number of notifications kept when no
// explicit limit is given.
const DefaultNotificationLimit = 5

// NotificationCenter is a bounded queue of transient, dismissible
// notifications. When full, the oldest notification is dropped.
type NotificationCenter struct {
	mu      sync.Mutex
	items   []models.Notification
	nextID  uint64
	limit   int
	updates chan struct{}

	now    func() time.Time
	logger *logger.Logger
}

// NewNotificationCenter creates a center keeping at most limit notifications.
func NewNotificationCenter(limit int, log *logger.Logger) *NotificationCenter {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationCenter{
		limit:   limit,
		updates: make(chan struct{}, 1),
		now:     time.Now,
		logger:  log,
	}
}

// Success queues a success notification.
func (c *NotificationCenter) Success(message string) models.Notification {
	return c.Push(models.NotificationSuccess, message)
}

// Error queues an error notification.
func (c *NotificationCenter) Error(message string) models.Notification {
	return c.Push(models.NotificationError, message)
}

// Push queues a notification and wakes a pending Updates reader.
func (c *NotificationCenter) Push(level models.NotificationLevel, message string) models.Notification {
	c.mu.Lock()
	c.nextID++
	n := models.Notification{ID: c.nextID, Level: level, Message: message, At: c.now()}
	c.items = append(c.items, n)
	if over := len(c.items) - c.limit; over > 0 {
		c.items = append([]models.Notification(nil), c.items[over:]...)
	}
	c.mu.Unlock()

	c.logger.Info().Str("func", "NotificationCenter.Push").Str("level", string(level)).Msg(message)
	c.signal()
	return n
}

// List returns the queued notifications, oldest first.
func (c *NotificationCenter) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.items...)
}

// Dismiss removes the notification with id. It reports whether it existed.
func (c *NotificationCenter) Dismiss(id uint64) bool {
	c.mu.Lock()
	removed := false
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if removed {
		c.signal()
	}
	return removed
}

// Expire removes every notification older than ttl.
func (c *NotificationCenter) Expire(ttl time.Duration) int {
	cutoff := c.now().Add(-ttl)

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, n := range c.items {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	expired := len(c.items) - len(kept)
	c.items = kept
	c.mu.Unlock()

	if expired > 0 {
		c.signal()
	}
	return expired
}

// Clear removes all notifications.
func (c *NotificationCenter) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.signal()
}

// Updates delivers a value after the queue changed. Changes made while
// nobody is reading coalesce into one value.
func (c *NotificationCenter) Updates() <-chan struct{} {
	return c.updates
}

func (c *NotificationCenter) signal() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
