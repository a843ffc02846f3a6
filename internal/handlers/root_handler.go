package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Greeting is returned by GET /.
const Greeting = "Hello from LifeJournal"

// RegisterRootRoutes registers the greeting and health routes.
func RegisterRootRoutes(router fiber.Router) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": Greeting})
	})
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}
