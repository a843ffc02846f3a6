package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"lifejournal/internal/logging"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// Entry event names published by the service.
const (
	EventEntryCreated   = "entry.created"
	EventEntrySubmitted = "entry.submitted"
)

// DefaultQueue is used when Config.Queue is empty.
const DefaultQueue = "entry_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the entry
// event queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
	}

	logging.Info().Str("queue", queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

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
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Message is the JSON envelope of every published event.
type Message struct {
	Event      string                 `json:"event"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// EncodeMessage builds the JSON body for an event.
func EncodeMessage(event string, data map[string]interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Message{Event: event, OccurredAt: at.UTC(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	return body, nil
}

// PublishEntryEvent publishes a persistent JSON message to the entry queue.
// The event name doubles as the message type.
func (c *Client) PublishEntryEvent(event string, data map[string]interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	now := time.Now()
	body, err := EncodeMessage(event, data, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         event,
			Timestamp:    now,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}

	logging.Debug().Str("event", event).Str("queue", c.queue).Msg("published entry event")
	return nil
}
