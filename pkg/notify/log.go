package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogDispatcher writes notifications to the log. Used when no broker is configured.
type LogDispatcher struct {
	logger *logrus.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the notification
func (d *LogDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.logger.WithFields(logrus.Fields{
		"recipient_id": n.RecipientID,
		"kind":         n.Kind,
		"entity_id":    n.CorrelatedEntityID,
		"title":        n.Title,
	}).Info("Notification dispatched")
	return nil
}
