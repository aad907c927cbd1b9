package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"carpool/internal/logger"
)

type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	BaseDelay  time.Duration
}

// Dispatcher delivers messages out of band. Enqueue never blocks and never
// reports delivery failures to the caller; they are retried and then logged.
type Dispatcher struct {
	sender Sender
	log    logger.Logger
	opts   DispatcherOptions
	queue  chan Message
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, log logger.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 200 * time.Millisecond
	}
	return &Dispatcher{
		sender: sender,
		log:    log.Action("notify"),
		opts:   opts,
		queue:  make(chan Message, opts.QueueSize),
	}
}

func (d *Dispatcher) Enqueue(msgs ...Message) {
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		select {
		case d.queue <- m:
		default:
			d.log.Warn("notification queue full, message dropped",
				"message_id", m.ID, "recipient_id", m.RecipientID, "subject", m.Subject)
		}
	}
}

// Run starts the workers and blocks until ctx is done and every worker has
// returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}
	d.wg.Wait()
	if n := len(d.queue); n > 0 {
		d.log.Warn("dispatcher stopped with undelivered messages", "pending", n)
	}
	return nil
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	log := d.log.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-d.queue:
			d.deliver(ctx, log, m)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, log logger.Logger, m Message) {
	b := retry.NewExponential(d.opts.BaseDelay)
	b = retry.WithCappedDuration(30*time.Second, b)
	b = retry.WithMaxRetries(uint64(d.opts.MaxRetries), b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := d.sender.Send(ctx, m); err != nil {
			log.Warn("notification attempt failed",
				"message_id", m.ID, "attempt", attempt, "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Error("notification dropped", err,
			"message_id", m.ID, "recipient_id", m.RecipientID, "subject", m.Subject, "attempts", attempt)
		return
	}
	log.Debug("notification delivered", "message_id", m.ID, "recipient_id", m.RecipientID, "attempts", attempt)
}
