package models

import "time"

// NotificationLevel is the severity of a user-facing notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient, dismissible message for the user.
type Notification struct {
	ID      uint64
	Level   NotificationLevel
	Message string
	At      time.Time
}
