package board

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel distinguishes success confirmations from failures.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// Notification is one short, human-readable outcome message. Every
// mutation produces one, success or failure.
type Notification struct {
	ID      string            `json:"id"`
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}

// Notifier delivers notifications to the user. The web layer pushes them
// over the websocket; tests collect them.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

func newNotification(level NotificationLevel, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
}
