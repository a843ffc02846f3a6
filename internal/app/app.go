// Package app assembles the Fiber application from its repositories,
// services and handlers.
package app

import (
	"lifejournal/internal/config"
	"lifejournal/internal/handlers"
	"lifejournal/internal/middleware"
	"lifejournal/internal/repositories"
	"lifejournal/internal/services"
	"lifejournal/internal/signature"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the outside collaborators of the application. Publisher may be
// nil when no broker is configured.
type Deps struct {
	DB        *gorm.DB
	Reminders services.ReminderSender
	Publisher services.EventPublisher
}

// New builds the Fiber app with every route registered.
func New(cfg *config.Config, deps Deps) *fiber.App {
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	entryRepo := repositories.NewGORMEntryRepository(deps.DB)
	postRepo := repositories.NewGORMIncomingPostRepository(deps.DB)

	opts := []services.EntryOption{services.WithSignatureAttempts(cfg.SignatureMaxAttempts)}
	if deps.Publisher != nil {
		opts = append(opts, services.WithPublisher(deps.Publisher))
	}

	userService := services.NewUserService(userRepo)
	entryService := services.NewEntryService(entryRepo, userRepo, signature.New(cfg.SignatureGenerator), deps.Reminders, opts...)
	inboundService := services.NewInboundService(entryService, cfg.InboundSignatureSource)

	app := fiber.New(fiber.Config{
		AppName:      "LifeJournal",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.RecordIncomingPost(postRepo))

	handlers.RegisterRootRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.NewUserHandler(userService).RegisterRoutes(app)
	handlers.NewEntryHandler(entryService).RegisterRoutes(app)
	handlers.NewInboundHandler(inboundService).RegisterRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found: "+c.Path())
	})

	return app
}
