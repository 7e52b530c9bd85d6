package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/metrics"
	"github.com/estatedesk/backoffice/internal/models"
)

// dispatchTimeout bounds a single sink delivery.
const dispatchTimeout = 5 * time.Second

// Dispatcher is an alias for the canonical domain.Dispatcher interface.
type Dispatcher = domain.Dispatcher

// NotifyWorker buffers notifications and fans each one out to every sink
// from a single worker goroutine. Delivery is best-effort: a full queue
// drops the notification and a failing sink is logged and counted.
type NotifyWorker struct {
	sinks []Dispatcher
	log   *logrus.Logger
	jobs  chan models.Notification
}

// NewNotifyWorker creates a NotifyWorker with the given queue capacity.
func NewNotifyWorker(log *logrus.Logger, queueSize int, sinks ...Dispatcher) *NotifyWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}

	return &NotifyWorker{
		sinks: sinks,
		log:   log,
		jobs:  make(chan models.Notification, queueSize),
	}
}

// Notify queues n. Non-blocking; drops n if the queue is full.
func (w *NotifyWorker) Notify(n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	select {
	case w.jobs <- n:
		metrics.NotifyQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.NotificationsDropped.Inc()
		w.log.WithFields(logrus.Fields{
			"type":      n.Type,
			"recipient": n.RecipientID,
		}).Warn("notification queue full, dropping")
	}
}

// Run processes notifications until the context is cancelled, then drains
// what is already queued.
func (w *NotifyWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case n := <-w.jobs:
			w.process(n)
		}
	}
}

func (w *NotifyWorker) drain() {
	for {
		select {
		case n := <-w.jobs:
			w.process(n)
		default:
			return
		}
	}
}

func (w *NotifyWorker) process(n models.Notification) {
	metrics.NotifyQueueDepth.Set(float64(len(w.jobs)))

	for _, sink := range w.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err := sink.Dispatch(ctx, n)
		cancel()

		if err != nil {
			metrics.NotificationFailures.WithLabelValues(sink.Name()).Inc()
			w.log.WithError(err).WithFields(logrus.Fields{
				"sink":      sink.Name(),
				"type":      n.Type,
				"recipient": n.RecipientID,
			}).Warn("notification dispatch failed")
		}
	}
}

// notifyStakeholders queues one notification per stakeholder except the actor.
func notifyStakeholders(
	n domain.Notifier, p *models.Property, actor models.Identity,
	typ models.NotificationType, detail map[string]any,
) {
	if n == nil || p == nil {
		return
	}

	for _, recipient := range p.Stakeholders() {
		if recipient == actor.UserID {
			continue
		}

		n.Notify(models.Notification{
			RecipientID: recipient,
			Type:        typ,
			PropertyID:  p.ID,
			Detail:      detail,
		})
	}
}
