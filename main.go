package main

import (
	"os"
	"os/signal"
	"syscall"

	"lifejournal/internal/app"
	"lifejournal/internal/config"
	"lifejournal/internal/database"
	"lifejournal/internal/logging"
	"lifejournal/internal/services"
	"lifejournal/pkg/mailgun"
	"lifejournal/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logging.Error().Err(err).Msg("failed to close database")
		}
	}()

	deps := app.Deps{DB: db, Reminders: reminderSender(cfg)}

	// Events are optional: without RABBITMQ_URL nothing is published.
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		deps.Publisher = mqClient
	}

	server := app.New(cfg, deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logging.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := server.Listen(cfg.AppPort); err != nil {
			logging.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	logging.Info().Msg("shutting down server")
	if err := server.Shutdown(); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	logging.Info().Msg("server stopped")
}

func reminderSender(cfg *config.Config) services.ReminderSender {
	if !cfg.MailEnabled() {
		logging.Warn().Msg("MAILGUN_API_KEY not set, reminders are only logged")
		return services.LogReminderSender{}
	}
	client := mailgun.NewClient(mailgun.Config{
		APIKey:  cfg.MailgunAPIKey,
		Domain:  cfg.MailgunDomain,
		BaseURL: cfg.MailgunBaseURL,
		Timeout: cfg.MailTimeout,
	})
	return services.NewMailReminderSender(client, cfg.MailgunDomain, cfg.MailFromName)
}
