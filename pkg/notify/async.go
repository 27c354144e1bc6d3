package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Async delivers notifications in the background. Send never blocks on
// delivery and never reports a delivery failure to the caller.
type Async struct {
	next    Dispatcher
	logger  *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps next so deliveries run in their own goroutine
func NewAsync(next Dispatcher, logger *logrus.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, logger: logger, timeout: timeout}
}

// Send schedules delivery of n
func (a *Async) Send(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.WithFields(logrus.Fields{
					"kind":      n.Kind,
					"entity_id": n.CorrelatedEntityID,
					"panic":     r,
				}).Error("Notification dispatcher panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.next.Dispatch(ctx, n); err != nil {
			a.logger.WithFields(logrus.Fields{
				"error_kind":   "dependency_unavailable",
				"kind":         n.Kind,
				"recipient_id": n.RecipientID,
				"entity_id":    n.CorrelatedEntityID,
				"error":        err.Error(),
			}).Warn("Failed to deliver notification")
		}
	}()
}

// Wait blocks until every scheduled delivery has finished
func (a *Async) Wait() {
	a.wg.Wait()
}
