package services

import (
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/models"
)

// LogNotifier writes user notifications to the log
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifications").Logger()}
}

// Notify logs the notification at a level matching its severity
func (n *LogNotifier) Notify(msg models.Notification) {
	event := n.logger.Info()
	if msg.Level == models.NotificationError {
		event = n.logger.Warn()
	}
	event.
		Str("session_id", msg.SessionID).
		Str("level", string(msg.Level)).
		Str("description", msg.Description).
		Msg(msg.Title)
}

// MultiNotifier fans a notification out to several notifiers
type MultiNotifier []creation.Notifier

// Notify delivers to every notifier in order
func (m MultiNotifier) Notify(msg models.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(msg)
		}
	}
}
