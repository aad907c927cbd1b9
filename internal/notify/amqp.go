package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"

	"carpool/internal/domain/models"
	"carpool/internal/logger"
)

const (
	EventsExchange = "booking_events"
	MailExchange   = "notifications"
	MailQueue      = "notifications.mail"
	MailRoutingKey = "mail.send"
)

// AMQP publishes notifications and lifecycle events to RabbitMQ. The channel
// is reopened lazily after a broker disconnect.
type AMQP struct {
	url  string
	log  logger.Logger
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects with bounded retries and declares the topology.
func DialAMQP(ctx context.Context, url string, log logger.Logger) (*AMQP, error) {
	a := &AMQP{url: url, log: log.Action("amqp")}

	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(5, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := a.connect(); err != nil {
			a.log.Warn("rabbitmq connection attempt failed", "attempt", attempt, "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	a.log.Info("rabbitmq connected", "attempt", attempt)
	return a, nil
}

func (a *AMQP) connect() error {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.ch = ch
	a.mu.Unlock()
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	if err := ch.ExchangeDeclare(MailExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", MailExchange, err)
	}
	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", MailQueue, err)
	}
	if err := ch.QueueBind(MailQueue, MailRoutingKey, MailExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", MailQueue, err)
	}
	return nil
}

func (a *AMQP) channel() (*amqp.Channel, error) {
	a.mu.Lock()
	ch := a.ch
	a.mu.Unlock()
	if ch != nil && !ch.IsClosed() {
		return ch, nil
	}
	if err := a.connect(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ch, nil
}

func (a *AMQP) publish(ctx context.Context, exchange, key, messageID string, body []byte) error {
	ch, err := a.channel()
	if err != nil {
		return err
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(pubCtx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Send hands msg to the mail queue.
func (a *AMQP) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return a.publish(ctx, MailExchange, MailRoutingKey, msg.ID, body)
}

// Publish fans a lifecycle event out on the topic exchange, routed by type.
func (a *AMQP) Publish(ctx context.Context, ev models.BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return a.publish(ctx, EventsExchange, string(ev.Type), uuid.NewString(), body)
}

func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.ch != nil {
		errs = append(errs, a.ch.Close())
	}
	if a.conn != nil {
		errs = append(errs, a.conn.Close())
	}
	a.ch, a.conn = nil, nil
	return errors.Join(errs...)
}
