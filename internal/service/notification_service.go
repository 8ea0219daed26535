package service

import (
	"time"

	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is a fire-and-forget message to a patient or doctor.
// Delivery is stubbed: the dispatcher emits a structured log line and
// never surfaces failures to callers.
type Notification struct {
	RecipientID   uuid.UUID
	RecipientKind string // "patient" | "doctor"
	Subject       string
	Body          string
}

type NotificationService struct {
	metrics *metrics.Collector
	log     *zap.Logger
	queue   chan Notification
	done    chan struct{}
}

const notificationBufferSize = 1_000

func NewNotificationService(col *metrics.Collector, log *zap.Logger) *NotificationService {
	svc := &NotificationService{
		metrics: col,
		log:     log,
		queue:   make(chan Notification, notificationBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// Dispatch enqueues a notification without blocking. A full buffer drops
// the notification; there is no delivery guarantee.
func (s *NotificationService) Dispatch(n Notification) {
	select {
	case s.queue <- n:
	default:
		s.log.Warn("notification buffer full, dropping",
			zap.String("recipient_kind", n.RecipientKind),
			zap.String("subject", n.Subject),
		)
	}
}

func (s *NotificationService) Shutdown() {
	close(s.queue)
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		s.log.Warn("notification service shutdown timed out")
	}
}

func (s *NotificationService) worker() {
	defer close(s.done)
	for n := range s.queue {
		s.metrics.NotificationsSent.Inc()
		s.log.Info("notification dispatched",
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("recipient_kind", n.RecipientKind),
			zap.String("subject", n.Subject),
			zap.String("body", n.Body),
		)
	}
}
