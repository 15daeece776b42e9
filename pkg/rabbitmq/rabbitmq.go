package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// JournalQueue carries journal.created events.
const JournalQueue = "journal_events"

// JournalCreated is published after a journal entry is stored.
type JournalCreated struct {
	JournalID string `json:"journal_id"`
	Email     string `json:"email"`
}

// JournalHandler processes one journal.created event.
type JournalHandler func(ctx context.Context, evt JournalCreated) error

// Client holds the RabbitMQ connection and the publishing channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing.
	mu  sync.Mutex
	log logrus.FieldLogger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the journal queue.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareJournalQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", JournalQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareJournalQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		JournalQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", JournalQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishJournalCreated publishes a persistent journal.created event.
func (c *Client) PublishJournalCreated(_ context.Context, evt JournalCreated) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",           // default exchange
		JournalQueue, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "journal.created",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.WithField("journal_id", evt.JournalID).Debug("published journal.created")
	return nil
}

// ConsumeJournalEvents starts a goroutine that feeds journal events to handler
// until ctx is cancelled or the channel closes.
func (c *Client) ConsumeJournalEvents(ctx context.Context, handler JournalHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := declareJournalQueue(ch); err != nil {
		ch.Close()
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		JournalQueue, // queue
		"",           // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", JournalQueue).Info("waiting for journal events")

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.log.Warn("journal event channel closed")
					return
				}
				HandleDelivery(ctx, msg, handler, c.log)
			}
		}
	}()

	return nil
}

// HandleDelivery decodes one message and acknowledges it. Failed messages are
// rejected without requeue so a poison message cannot loop.
func HandleDelivery(ctx context.Context, msg amqp.Delivery, handler JournalHandler, log logrus.FieldLogger) {
	entry := log.WithField("delivery_tag", msg.DeliveryTag)

	var evt JournalCreated
	err := json.Unmarshal(msg.Body, &evt)
	if err == nil {
		err = handler(ctx, evt)
	}
	if err != nil {
		entry.WithError(err).Error("failed to process journal event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			entry.WithError(nackErr).Error("failed to nack message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		entry.WithError(ackErr).Error("failed to ack message")
	}
}
