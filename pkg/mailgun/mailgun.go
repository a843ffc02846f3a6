// Package mailgun sends transactional email through the Mailgun messages
// API. Calls have a hard timeout and go through a circuit breaker so an
// outage at the provider cannot stall request handlers.
package mailgun

import (
	"errors"
	"fmt"
	"time"

	"lifejournal/internal/logging"

	"github.com/gofiber/fiber/v2"
	gobreaker "github.com/sony/gobreaker/v2"
)

// DefaultBaseURL is the public Mailgun API endpoint.
const DefaultBaseURL = "https://api.mailgun.net"

// Config holds Mailgun credentials and client limits.
type Config struct {
	APIKey  string
	Domain  string
	BaseURL string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	// Headers are sent as custom MIME headers ("h:" parameters).
	Headers map[string]string
}

// StatusError reports a non-2xx answer from Mailgun.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mailgun responded with status %d: %s", e.Code, e.Body)
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("mailgun circuit breaker is open")

// Client is a Mailgun messages API client.
type Client struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker[any]
}

// NewClient creates a client, filling unset limits with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "mailgun",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &Client{cfg: cfg, breaker: breaker}
}

// Domain returns the sending domain.
func (c *Client) Domain() string {
	return c.cfg.Domain
}

// State returns the breaker state, e.g. "closed" or "open".
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Send delivers msg.
func (c *Client) Send(msg Message) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.post(msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

func (c *Client) post(msg Message) error {
	url := fmt.Sprintf("%s/v3/%s/messages", c.cfg.BaseURL, c.cfg.Domain)

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("from", msg.From)
	args.Set("to", msg.To)
	args.Set("subject", msg.Subject)
	args.Set("text", msg.Text)
	for name, value := range msg.Headers {
		args.Set("h:"+name, value)
	}

	agent := fiber.Post(url).
		BasicAuth("api", c.cfg.APIKey).
		Form(args).
		Timeout(c.cfg.Timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return &StatusError{Code: code, Body: string(body)}
	}

	logging.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("email accepted by mailgun")
	return nil
}
