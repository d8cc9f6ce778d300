package models

import "time"

// NotificationLevel is the severity of a user facing message
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a fire-and-forget message for the user of a session
type Notification struct {
	SessionID   string            `json:"session_id"`
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SessionToken binds a client to its creation session
type SessionToken struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
