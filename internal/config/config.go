package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort     string
	DatabaseURL string

	MailgunAPIKey  string
	MailgunDomain  string
	MailgunBaseURL string
	MailFromName   string
	MailTimeout    time.Duration

	RabbitMQURL   string
	RabbitMQQueue string

	SignatureGenerator   string
	SignatureMaxAttempts int

	InboundSignatureSource string

	LogLevel  string
	LogFormat string
}

// Signature source names accepted by INBOUND_SIGNATURE_SOURCE.
const (
	SignatureFromRecipient = "recipient"
	SignatureFromInReplyTo = "in-reply-to"
)

// Signature generator names accepted by SIGNATURE_GENERATOR.
const (
	GeneratorRandom = "random"
	GeneratorSecure = "secure"
)

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_URL", "postgres://localhost/lifejournal?sslmode=disable")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAILGUN_DOMAIN", "commentarios.net")
	v.SetDefault("MAILGUN_BASE_URL", "https://api.mailgun.net")
	v.SetDefault("MAIL_FROM_NAME", "LifeJournal")
	v.SetDefault("MAIL_TIMEOUT", "10s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "entry_events")
	v.SetDefault("SIGNATURE_GENERATOR", GeneratorRandom)
	v.SetDefault("SIGNATURE_MAX_ATTEMPTS", 5)
	v.SetDefault("INBOUND_SIGNATURE_SOURCE", SignatureFromRecipient)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads the configuration from environment variables, falling back to
// the defaults.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance and
// validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:                v.GetString("APP_PORT"),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		MailgunAPIKey:          v.GetString("MAILGUN_API_KEY"),
		MailgunDomain:          v.GetString("MAILGUN_DOMAIN"),
		MailgunBaseURL:         strings.TrimRight(v.GetString("MAILGUN_BASE_URL"), "/"),
		MailFromName:           v.GetString("MAIL_FROM_NAME"),
		MailTimeout:            v.GetDuration("MAIL_TIMEOUT"),
		RabbitMQURL:            v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:          v.GetString("RABBITMQ_QUEUE"),
		SignatureGenerator:     strings.ToLower(v.GetString("SIGNATURE_GENERATOR")),
		SignatureMaxAttempts:   v.GetInt("SIGNATURE_MAX_ATTEMPTS"),
		InboundSignatureSource: strings.ToLower(v.GetString("INBOUND_SIGNATURE_SOURCE")),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MailTimeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive, got %s", c.MailTimeout)
	}
	if c.SignatureMaxAttempts < 1 {
		return fmt.Errorf("SIGNATURE_MAX_ATTEMPTS must be at least 1, got %d", c.SignatureMaxAttempts)
	}
	switch c.SignatureGenerator {
	case GeneratorRandom, GeneratorSecure:
	default:
		return fmt.Errorf("unknown SIGNATURE_GENERATOR %q", c.SignatureGenerator)
	}
	switch c.InboundSignatureSource {
	case SignatureFromRecipient, SignatureFromInReplyTo:
	default:
		return fmt.Errorf("unknown INBOUND_SIGNATURE_SOURCE %q", c.InboundSignatureSource)
	}
	return nil
}

// MailEnabled reports whether reminder emails are delivered through Mailgun.
func (c *Config) MailEnabled() bool {
	return c.MailgunAPIKey != ""
}
