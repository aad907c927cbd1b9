package services

import (
	"context"
	"time"

	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/notify"
)

// EventPublisher receives committed booking lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.BookingEvent) error
}

// Notifier queues messages for out-of-band delivery.
type Notifier interface {
	Enqueue(msgs ...notify.Message)
}

// Publishers fans an event out to every publisher. A failing publisher does
// not stop the others; failures are logged.
type Publishers struct {
	Targets []EventPublisher
	Log     logger.Logger
	Timeout time.Duration
}

func (p Publishers) Publish(ctx context.Context, ev models.BookingEvent) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	for _, t := range p.Targets {
		if t == nil {
			continue
		}
		pubCtx, cancel := context.WithTimeout(ctx, timeout)
		err := t.Publish(pubCtx, ev)
		cancel()
		if err != nil && p.Log != nil {
			p.Log.Error("publish booking event failed", err,
				"event", string(ev.Type), "booking_id", ev.BookingID, "ride_id", ev.RideID)
		}
	}
	return nil
}
